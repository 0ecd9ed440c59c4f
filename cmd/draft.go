package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/aiboostly/leadpilot/internal/outreach"
)

var (
	draftData    string
	draftLiveURL string
	draftScraped string
	draftReviews string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a Dutch cold email for a business",
	Long: `Drafts the short outreach email pointing at the live preview site and
prints the body to stdout. Text flags accept @path to read from a file.

Example:
  leadpilot draft --data '{"Business Name":"Kapsalon Anne"}' \
    --live-url https://kapsalon-anne-17123.netlify.app`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		record, err := parseRecord(draftData)
		if err != nil {
			return eris.Wrap(err, "draft: parse --data")
		}
		scraped, err := readTextFlagOrFile(draftScraped)
		if err != nil {
			return eris.Wrap(err, "draft: read --scraped-text")
		}
		reviews, err := readTextFlagOrFile(draftReviews)
		if err != nil {
			return eris.Wrap(err, "draft: read --reviews-text")
		}

		llm, err := newAnthropicClient()
		if err != nil {
			return eris.Wrap(err, "draft: create anthropic client")
		}

		composer := outreach.NewComposer(llm, cfg.Anthropic.Model, cfg.Anthropic.MailMaxTokens)
		body, err := composer.Compose(ctx, record, draftLiveURL, scraped, reviews)
		if err != nil {
			return eris.Wrap(err, "draft: compose email")
		}
		fmt.Println(body)
		return nil
	},
}

func init() {
	draftCmd.Flags().StringVar(&draftData, "data", "", "business record as a JSON object")
	draftCmd.Flags().StringVar(&draftLiveURL, "live-url", "", "public URL of the deployed preview site")
	draftCmd.Flags().StringVar(&draftScraped, "scraped-text", "", "scraped website text, or @path")
	draftCmd.Flags().StringVar(&draftReviews, "reviews-text", "", "formatted reviews block, or @path")
	_ = draftCmd.MarkFlagRequired("data")
	_ = draftCmd.MarkFlagRequired("live-url")
	rootCmd.AddCommand(draftCmd)
}
