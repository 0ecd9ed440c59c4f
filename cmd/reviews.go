package main

import (
	"github.com/spf13/cobra"

	"github.com/aiboostly/leadpilot/pkg/places"
)

var (
	reviewsPlaceID    string
	reviewsMaxReviews int
	reviewsMaxPhotos  int
	reviewsFormat     bool
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Fetch Google reviews and photos for a place",
	Long: `Fetches up to five most-relevant reviews (Dutch locale) and six photo URLs
for a Google Place. Prints the media as JSON, or as the prompt block the
site builder consumes with --format. A missing place or API failure prints
empty media; review fetching never fails.

Example:
  leadpilot reviews --place-id ChIJexample --format`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		media := newReviewFetcher().Fetch(ctx, reviewsPlaceID, reviewsMaxReviews, reviewsMaxPhotos)
		if reviewsFormat {
			cmd.Println(media.FormatPrompt())
			return nil
		}
		return printJSON(media)
	},
}

func init() {
	reviewsCmd.Flags().StringVar(&reviewsPlaceID, "place-id", "", "Google Place ID")
	reviewsCmd.Flags().IntVar(&reviewsMaxReviews, "max-reviews", places.DefaultMaxReviews, "max reviews to fetch")
	reviewsCmd.Flags().IntVar(&reviewsMaxPhotos, "max-photos", places.DefaultMaxPhotos, "max photo URLs to fetch")
	reviewsCmd.Flags().BoolVar(&reviewsFormat, "format", false, "print as a prompt block instead of JSON")
	_ = reviewsCmd.MarkFlagRequired("place-id")
	rootCmd.AddCommand(reviewsCmd)
}
