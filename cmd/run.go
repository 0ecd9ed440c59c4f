package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/internal/deploy"
	"github.com/aiboostly/leadpilot/internal/outreach"
	"github.com/aiboostly/leadpilot/internal/pipeline"
	"github.com/aiboostly/leadpilot/internal/site"
)

var (
	runSheet string
	runLimit int
	runTest  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process GO rows through the full pipeline",
	Long: `Selects rows with Status=GO, then for each: scrapes the business website,
fetches Google reviews, generates a preview website, deploys it to Netlify,
drafts a Dutch cold email, and sends it. Every stage writes its status back
to the sheet. A failing row is marked ERROR and never stops the batch.

Examples:
  # Process one row against the configured sheet
  leadpilot run

  # Process five rows, redirecting every email to the test address
  leadpilot run --limit 5 --test`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := newStore(ctx)
		if err != nil {
			return eris.Wrap(err, "run: create row store")
		}
		llm, err := newAnthropicClient()
		if err != nil {
			return eris.Wrap(err, "run: create anthropic client")
		}
		nl, err := newNetlifyClient()
		if err != nil {
			return eris.Wrap(err, "run: create netlify client")
		}
		dispatcher, err := outreach.NewDispatcher(cfg.SMTP)
		if err != nil {
			return eris.Wrap(err, "run: create dispatcher")
		}

		p := pipeline.New(
			store,
			newScrapeFetcher(),
			newReviewFetcher(),
			site.NewGenerator(llm, cfg.Anthropic.Model, cfg.Anthropic.SiteMaxTokens),
			deploy.NewDeployer(nl),
			outreach.NewComposer(llm, cfg.Anthropic.Model, cfg.Anthropic.MailMaxTokens),
			dispatcher,
			cfg.Pipeline,
		)

		limit := runLimit
		if limit == 0 {
			limit = cfg.Pipeline.Limit
		}

		result, err := p.Run(ctx, sheetOrDefault(runSheet), limit, runTest)
		if err != nil {
			return eris.Wrap(err, "run: pipeline")
		}

		// Row failures are recorded in the sheet and in the result; once the
		// batch started, the command still exits zero.
		if result.Failed > 0 {
			zap.L().Warn("run: batch had failed rows", zap.Int("failed", result.Failed))
		}
		return printJSON(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runSheet, "sheet", "", "sheet tab name (default from config)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max rows to process (default from config)")
	runCmd.Flags().BoolVar(&runTest, "test", false, "redirect all emails to the configured test address")
	rootCmd.AddCommand(runCmd)
}
