package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/internal/deploy"
	"github.com/aiboostly/leadpilot/internal/site"
)

var (
	buildData    string
	buildScraped string
	buildReviews string
	buildOut     string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate a preview website for a business",
	Long: `Generates a complete single-file HTML website from the business data and
writes it to disk, printing the file path. Text flags accept @path to read
from a file.

Example:
  leadpilot build --data '{"Business Name":"Kapsalon Anne","City":"Utrecht"}' \
    --scraped-text @scrape.txt --out site.html`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		record, err := parseRecord(buildData)
		if err != nil {
			return eris.Wrap(err, "build: parse --data")
		}
		scraped, err := readTextFlagOrFile(buildScraped)
		if err != nil {
			return eris.Wrap(err, "build: read --scraped-text")
		}
		reviews, err := readTextFlagOrFile(buildReviews)
		if err != nil {
			return eris.Wrap(err, "build: read --reviews-text")
		}

		llm, err := newAnthropicClient()
		if err != nil {
			return eris.Wrap(err, "build: create anthropic client")
		}

		generator := site.NewGenerator(llm, cfg.Anthropic.Model, cfg.Anthropic.SiteMaxTokens)
		html, err := generator.Generate(ctx, record, scraped, reviews)
		if err != nil {
			return eris.Wrap(err, "build: generate website")
		}

		out := buildOut
		if out == "" {
			name := deploy.Slugify(record.Name())
			if name == "" {
				name = "site"
			}
			out = filepath.Join(cfg.Pipeline.WorkDir, name+".html")
			if err := os.MkdirAll(cfg.Pipeline.WorkDir, 0o755); err != nil {
				return eris.Wrap(err, "build: create work dir")
			}
		}
		if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
			return eris.Wrap(err, "build: write output")
		}

		zap.L().Info("build: website written",
			zap.String("path", out),
			zap.Int("bytes", len(html)),
		)
		fmt.Println(out)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildData, "data", "", "business record as a JSON object")
	buildCmd.Flags().StringVar(&buildScraped, "scraped-text", "", "scraped website text, or @path")
	buildCmd.Flags().StringVar(&buildReviews, "reviews-text", "", "formatted reviews block, or @path")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "output file path (default under the work dir)")
	_ = buildCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(buildCmd)
}
