package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/aiboostly/leadpilot/internal/deploy"
)

var (
	deployHTML string
	deployName string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Publish an HTML file as a new Netlify site",
	Long: `Creates a uniquely named site from the business name, uploads the document
via the digest deploy protocol, and prints the public HTTPS URL.

Example:
  leadpilot deploy --html site.html --name "Kapsalon Anne"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		html, err := os.ReadFile(deployHTML)
		if err != nil {
			return eris.Wrap(err, "deploy: read html file")
		}

		nl, err := newNetlifyClient()
		if err != nil {
			return eris.Wrap(err, "deploy: create netlify client")
		}

		url, err := deploy.NewDeployer(nl).Deploy(ctx, string(html), deployName)
		if err != nil {
			return eris.Wrap(err, "deploy: publish")
		}
		fmt.Println(url)
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deployHTML, "html", "", "path to the HTML document")
	deployCmd.Flags().StringVar(&deployName, "name", "", "business display name for the site slug")
	_ = deployCmd.MarkFlagRequired("html")
	_ = deployCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(deployCmd)
}
