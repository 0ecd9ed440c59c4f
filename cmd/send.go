package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/aiboostly/leadpilot/internal/outreach"
)

var (
	sendTo       string
	sendBody     string
	sendBusiness string
	sendTest     bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a drafted email over SMTP",
	Long: `Delivers the body as a dual-format (plain + HTML) email and prints a JSON
receipt. The body flag accepts @path to read from a file. With --test the
message goes to the configured test address instead of --to.

Example:
  leadpilot send --to info@example.nl --body @draft.txt --business-name "Kapsalon Anne"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		body, err := readTextFlagOrFile(sendBody)
		if err != nil {
			return eris.Wrap(err, "send: read --body")
		}
		if body == "" {
			return eris.New("send: --body must not be empty")
		}

		dispatcher, err := outreach.NewDispatcher(cfg.SMTP)
		if err != nil {
			return eris.Wrap(err, "send: create dispatcher")
		}

		receipt, err := dispatcher.Send(ctx, sendTo, body, sendBusiness, sendTest)
		if err != nil {
			return eris.Wrap(err, "send: deliver")
		}
		return printJSON(receipt)
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient email address")
	sendCmd.Flags().StringVar(&sendBody, "body", "", "email body text, or @path")
	sendCmd.Flags().StringVar(&sendBusiness, "business-name", "", "business name for the subject line")
	sendCmd.Flags().BoolVar(&sendTest, "test", false, "redirect to the configured test address")
	_ = sendCmd.MarkFlagRequired("body")
	rootCmd.AddCommand(sendCmd)
}
