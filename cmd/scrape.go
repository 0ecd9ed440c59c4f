package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scrapeURL      string
	scrapeMaxChars int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a website into prompt-ready text",
	Long: `Crawls the site (up to 5 pages, depth 1), falling back to a single-page
scrape when the crawl yields nothing. Prints the cleaned markdown to stdout.
An unusable URL or a dead site prints nothing; scraping never fails.

Example:
  leadpilot scrape --url https://example.nl`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		maxChars := scrapeMaxChars
		if maxChars == 0 {
			maxChars = cfg.Pipeline.MaxScrapeChars
		}

		text := newScrapeFetcher().Fetch(ctx, scrapeURL, maxChars)
		if text == "" {
			zap.L().Warn("scrape: no content", zap.String("url", scrapeURL))
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "website URL to scrape")
	scrapeCmd.Flags().IntVar(&scrapeMaxChars, "max-chars", 0, "max characters of output (default from config)")
	_ = scrapeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(scrapeCmd)
}
