package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/pkg/firecrawl"
)

const (
	// DefaultMaxChars caps how much scraped text reaches the prompt.
	DefaultMaxChars = 8000

	// crawlPageLimit covers the homepage plus up to 4 linked pages.
	crawlPageLimit = 5
	crawlMaxDepth  = 1

	crawlPollInterval = 3 * time.Second
	crawlDeadline     = 45 * time.Second
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// Fetcher retrieves a business website's text for prompt context. Scraped
// content is optional for every caller, so Fetch never returns an error:
// every failure path degrades to "".
type Fetcher struct {
	client       firecrawl.Client
	pollInterval time.Duration
	deadline     time.Duration
}

// FetcherOption customizes crawl timing, mainly for tests.
type FetcherOption func(*Fetcher)

// WithPollInterval overrides the crawl status poll cadence.
func WithPollInterval(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.pollInterval = d
	}
}

// WithDeadline overrides the overall crawl deadline.
func WithDeadline(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.deadline = d
	}
}

// NewFetcher creates a Fetcher. A nil client (no API key configured) is
// allowed and makes every Fetch return "".
func NewFetcher(client firecrawl.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:       client,
		pollInterval: crawlPollInterval,
		deadline:     crawlDeadline,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch scrapes url via a bounded multi-page crawl, falling back to a
// single-page scrape of the homepage, and returns at most maxChars of
// cleaned text. Missing or malformed URLs return "".
func (f *Fetcher) Fetch(ctx context.Context, url string, maxChars int) string {
	url = strings.TrimSpace(url)
	if url == "" || !strings.HasPrefix(url, "http") {
		return ""
	}
	if f.client == nil {
		zap.L().Warn("scrape: no API key configured, skipping scrape")
		return ""
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	text, err := f.crawlSite(ctx, url, maxChars)
	if err == nil {
		zap.L().Info("scrape: crawled site", zap.String("url", url), zap.Int("chars", len(text)))
		return text
	}
	zap.L().Warn("scrape: crawl failed, falling back to single-page scrape",
		zap.String("url", url),
		zap.Error(err),
	)

	text, err = f.scrapeSingle(ctx, url, maxChars)
	if err != nil {
		zap.L().Warn("scrape: single-page scrape failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return ""
	}
	zap.L().Info("scrape: scraped homepage", zap.String("url", url), zap.Int("chars", len(text)))
	return text
}

// crawlSite crawls the homepage plus linked pages and joins them into one
// section-per-page text block.
func (f *Fetcher) crawlSite(ctx context.Context, url string, maxChars int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.deadline)
	defer cancel()

	resp, err := f.client.Crawl(ctx, firecrawl.CrawlRequest{
		URL:      url,
		MaxDepth: crawlMaxDepth,
		Limit:    crawlPageLimit,
		ScrapeOptions: &firecrawl.ScrapeOptions{
			Formats:         []string{"markdown"},
			OnlyMainContent: true,
		},
	})
	if err != nil {
		return "", err
	}

	status, err := firecrawl.PollCrawl(ctx, f.client, resp.ID,
		firecrawl.WithPollInterval(f.pollInterval),
	)
	if err != nil {
		return "", err
	}

	var sections []string
	for _, page := range status.Data {
		md := strings.TrimSpace(page.Markdown)
		if md == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("--- PAGE: %s ---\n%s", page.Metadata.SourceURL, md))
	}

	return clean(strings.Join(sections, "\n\n"), maxChars), nil
}

func (f *Fetcher) scrapeSingle(ctx context.Context, url string, maxChars int) (string, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", nil
	}
	return clean(resp.Data.Markdown, maxChars), nil
}

// clean collapses runs of blank lines and truncates to maxChars, marking the
// cut with an ellipsis only when content was actually dropped.
func clean(text string, maxChars int) string {
	text = strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
	if len(text) > maxChars {
		return text[:maxChars] + "..."
	}
	return text
}
