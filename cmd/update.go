package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/aiboostly/leadpilot/internal/model"
)

var (
	updateSheet   string
	updateRow     int
	updateUpdates string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Write columns into a single sheet row",
	Long: `Applies a JSON object of column name to value onto one row. Columns not
present in the header row are skipped with a warning. Writing the Status
column also recolors the status cell.

Example:
  leadpilot update --row 7 --updates '{"Status":"GO","Notes":""}'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if updateRow < 2 {
			return eris.New("update: --row must be 2 or greater (row 1 is the header)")
		}

		var updates map[string]string
		if err := json.Unmarshal([]byte(updateUpdates), &updates); err != nil {
			return eris.Wrap(err, "update: parse --updates json")
		}
		if len(updates) == 0 {
			return eris.New("update: --updates must name at least one column")
		}

		store, err := newStore(ctx)
		if err != nil {
			return eris.Wrap(err, "update: create row store")
		}

		if err := store.Update(ctx, sheetOrDefault(updateSheet), updateRow, updates); err != nil {
			return eris.Wrap(err, "update: write row")
		}
		return printJSON(map[string]interface{}{
			"row":     updateRow,
			"columns": len(updates),
			"status":  updates[model.ColStatus],
		})
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateSheet, "sheet", "", "sheet tab name (default from config)")
	updateCmd.Flags().IntVar(&updateRow, "row", 0, "1-based sheet row number")
	updateCmd.Flags().StringVar(&updateUpdates, "updates", "", "JSON object of column name to value")
	_ = updateCmd.MarkFlagRequired("row")
	_ = updateCmd.MarkFlagRequired("updates")
	rootCmd.AddCommand(updateCmd)
}
