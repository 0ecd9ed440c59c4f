package firecrawl

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultPollTimeout  = 45 * time.Second
)

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval time.Duration
	timeout  time.Duration
}

// WithPollInterval overrides the fixed interval between status checks.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.interval = d
	}
}

// WithPollTimeout overrides the overall crawl deadline (applied only if the
// parent context has no deadline of its own).
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.timeout = d
	}
}

// PollCrawl polls GetCrawlStatus at a fixed interval until the crawl
// completes, fails, or the deadline passes. Crawls here are small (homepage
// plus a handful of subpages) so a flat few-second cadence is enough.
func PollCrawl(ctx context.Context, client Client, id string, opts ...PollOption) (*CrawlStatusResponse, error) {
	cfg := pollConfig{
		interval: defaultPollInterval,
		timeout:  defaultPollTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	for {
		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), fmt.Sprintf("firecrawl: poll crawl %s timed out", id))
		case <-time.After(cfg.interval):
		}

		status, err := client.GetCrawlStatus(ctx, id)
		if err != nil {
			return nil, eris.Wrap(err, fmt.Sprintf("firecrawl: poll crawl %s", id))
		}

		switch status.Status {
		case "completed":
			return status, nil
		case "failed":
			return nil, eris.Errorf("firecrawl: crawl %s failed", id)
		}
	}
}
