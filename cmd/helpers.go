package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"

	"github.com/aiboostly/leadpilot/internal/model"
	"github.com/aiboostly/leadpilot/internal/scrape"
	"github.com/aiboostly/leadpilot/internal/sheet"
	"github.com/aiboostly/leadpilot/pkg/anthropic"
	"github.com/aiboostly/leadpilot/pkg/firecrawl"
	"github.com/aiboostly/leadpilot/pkg/netlify"
	"github.com/aiboostly/leadpilot/pkg/places"
)

func newStore(ctx context.Context) (sheet.Store, error) {
	return sheet.NewStore(ctx, cfg.Sheets)
}

func newScrapeFetcher() *scrape.Fetcher {
	var client firecrawl.Client
	if cfg.Firecrawl.Key != "" {
		var opts []firecrawl.Option
		if cfg.Firecrawl.BaseURL != "" {
			opts = append(opts, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		}
		client = firecrawl.NewClient(cfg.Firecrawl.Key, opts...)
	}
	// A nil client makes the fetcher return "" for every URL, which the
	// pipeline treats as "no website content".
	return scrape.NewFetcher(client)
}

func newReviewFetcher() *places.Fetcher {
	var client places.Client
	if cfg.Places.Key != "" {
		var opts []places.Option
		if cfg.Places.BaseURL != "" {
			opts = append(opts, places.WithBaseURL(cfg.Places.BaseURL))
		}
		client = places.NewClient(cfg.Places.Key, opts...)
	}
	return places.NewFetcher(client)
}

func newAnthropicClient() (anthropic.Client, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic api key must be configured")
	}
	return anthropic.NewClient(cfg.Anthropic.Key), nil
}

func newNetlifyClient() (netlify.Client, error) {
	if cfg.Netlify.Token == "" {
		return nil, eris.New("netlify token must be configured")
	}
	var opts []netlify.Option
	if cfg.Netlify.BaseURL != "" {
		opts = append(opts, netlify.WithBaseURL(cfg.Netlify.BaseURL))
	}
	return netlify.NewClient(cfg.Netlify.Token, opts...), nil
}

func parseRecord(data string) (model.BusinessRecord, error) {
	var record model.BusinessRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, eris.Wrap(err, "parse business data json")
	}
	return record, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode result")
	}
	return nil
}

func sheetOrDefault(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Sheets.SheetName
}

func readTextFlagOrFile(value string) (string, error) {
	if len(value) > 0 && value[0] == '@' {
		b, err := os.ReadFile(value[1:])
		if err != nil {
			return "", eris.Wrap(err, fmt.Sprintf("read %s", value[1:]))
		}
		return string(b), nil
	}
	return value, nil
}
