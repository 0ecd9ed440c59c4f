package places

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultMaxReviews bounds how many reviews end up in the prompt.
	DefaultMaxReviews = 5
	// DefaultMaxPhotos bounds how many photo URLs end up in the prompt.
	DefaultMaxPhotos = 6

	photoMaxWidth = 1200
)

// Media is the reputation payload for one business: a handful of reviews and
// directly fetchable photo URLs.
type Media struct {
	Reviews []Review `json:"reviews"`
	Photos  []string `json:"photos"`
}

// Empty reports whether the media carries nothing usable.
func (m Media) Empty() bool {
	return len(m.Reviews) == 0 && len(m.Photos) == 0
}

// Fetcher retrieves reviews and photos for a place. Reputation context is
// optional for every caller, so Fetch never returns an error: a blank id,
// missing credential, or any remote failure degrades to empty Media.
type Fetcher struct {
	client Client
}

// NewFetcher creates a Fetcher. A nil client (no API key configured) is
// allowed and makes every Fetch return empty Media.
func NewFetcher(client Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves up to maxReviews reviews and maxPhotos photos in a single
// Place Details call.
func (f *Fetcher) Fetch(ctx context.Context, placeID string, maxReviews, maxPhotos int) Media {
	if strings.TrimSpace(placeID) == "" {
		return Media{}
	}
	if f.client == nil {
		zap.L().Warn("places: no API key configured, skipping reviews")
		return Media{}
	}
	if maxReviews <= 0 {
		maxReviews = DefaultMaxReviews
	}
	if maxPhotos <= 0 {
		maxPhotos = DefaultMaxPhotos
	}

	resp, err := f.client.Details(ctx, strings.TrimSpace(placeID))
	if err != nil {
		zap.L().Warn("places: details call failed",
			zap.String("place_id", placeID),
			zap.Error(err),
		)
		return Media{}
	}
	if resp.Status != "OK" {
		zap.L().Warn("places: non-OK API status",
			zap.String("place_id", placeID),
			zap.String("status", resp.Status),
			zap.String("error_message", resp.ErrorMessage),
		)
		return Media{}
	}

	var media Media
	for _, rev := range resp.Result.Reviews {
		if len(media.Reviews) >= maxReviews {
			break
		}
		if strings.TrimSpace(rev.Text) == "" {
			continue
		}
		rev.Text = strings.TrimSpace(rev.Text)
		media.Reviews = append(media.Reviews, rev)
	}
	for _, photo := range resp.Result.Photos {
		if len(media.Photos) >= maxPhotos {
			break
		}
		if photo.PhotoReference == "" {
			continue
		}
		media.Photos = append(media.Photos, f.client.PhotoURL(photo.PhotoReference, photoMaxWidth))
	}

	zap.L().Info("places: fetched media",
		zap.String("place_id", placeID),
		zap.Int("reviews", len(media.Reviews)),
		zap.Int("photos", len(media.Photos)),
	)
	return media
}

// FormatPrompt renders the media as a prompt-ready text block. Returns ""
// when there is nothing to say.
func (m Media) FormatPrompt() string {
	var sections []string

	if len(m.Reviews) > 0 {
		lines := []string{"REAL GOOGLE REVIEWS (include these verbatim in the website):"}
		for _, r := range m.Reviews {
			rating := r.Rating
			if rating < 0 {
				rating = 0
			}
			if rating > 5 {
				rating = 5
			}
			stars := strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
			lines = append(lines, fmt.Sprintf("\n%s %s (%s)", stars, r.AuthorName, r.RelativeTimeDescription))
			lines = append(lines, fmt.Sprintf("%q", r.Text))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(m.Photos) > 0 {
		lines := []string{"REAL BUSINESS PHOTOS (use these as <img> src in the website):"}
		for i, url := range m.Photos {
			lines = append(lines, fmt.Sprintf("Photo %d: %s", i+1, url))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n\n")
}
