package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadpilot",
	Short: "Lead generation pipeline for local businesses",
	Long:  "Scrapes business websites, builds preview sites with Claude, deploys them to Netlify, and sends Dutch cold outreach emails, driven by a Google Sheet.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
