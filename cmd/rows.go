package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/aiboostly/leadpilot/internal/model"
)

var (
	rowsSheet  string
	rowsStatus string
	rowsLimit  int
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "List rows matching a status",
	Long: `Prints the matching rows as a JSON array. Each element carries the row's
named fields plus "_row", the 1-based sheet row number used by update.

Examples:
  leadpilot rows
  leadpilot rows --status ERROR --limit 10`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := newStore(ctx)
		if err != nil {
			return eris.Wrap(err, "rows: create row store")
		}

		rows, err := store.Select(ctx, sheetOrDefault(rowsSheet), rowsStatus, rowsLimit)
		if err != nil {
			return eris.Wrap(err, "rows: select")
		}

		out := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			entry := make(map[string]string, len(row.Record)+1)
			for k, v := range row.Record {
				entry[k] = v
			}
			entry["_row"] = strconv.Itoa(row.Num)
			out = append(out, entry)
		}
		return printJSON(out)
	},
}

func init() {
	rowsCmd.Flags().StringVar(&rowsSheet, "sheet", "", "sheet tab name (default from config)")
	rowsCmd.Flags().StringVar(&rowsStatus, "status", model.StatusGo.String(), "status value to match")
	rowsCmd.Flags().IntVar(&rowsLimit, "limit", 0, "max rows to return (0 = all)")
	rootCmd.AddCommand(rowsCmd)
}
