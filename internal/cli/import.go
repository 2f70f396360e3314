package cli

import (
	"os"

	"github.com/spf13/cobra"

	"propjournal/internal/errors"
	"propjournal/internal/importer"
	"propjournal/internal/logging"
)

// addImportCommands adds trade import commands.
func addImportCommands(rootCmd *cobra.Command, app *App) {
	var accountID string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from a broker CSV export",
		Long: `Import raw trades from a broker CSV export.

Expected columns: symbol, side, qty, entry_price, exit_price, pnl,
entry_time, exit_time, entry_fill_id, exit_fill_id, notes, tags.
Malformed rows are skipped and counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, "opening %s", args[0])
			}
			defer f.Close()

			imp := importer.New(app.Logger)
			result, err := imp.Read(f)
			if err != nil {
				return err
			}

			if accountID != "" {
				acct, err := requireAccount(cmd, app, accountID)
				if err != nil {
					return err
				}
				for i := range result.Trades {
					result.Trades[i].AccountID = acct.ID
				}
			}

			if err := app.Store.SaveTrades(cmd.Context(), result.Trades); err != nil {
				return err
			}
			logging.LogImport(app.Logger, args[0], result.Imported, result.Skipped)

			if output.IsJSON() {
				return output.JSON(map[string]int{
					"imported": result.Imported,
					"skipped":  result.Skipped,
				})
			}
			output.Success("✓ Imported %d trades", result.Imported)
			if result.Skipped > 0 {
				output.Warning("  Skipped %d malformed rows", result.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "link imported trades to an account")
	rootCmd.AddCommand(cmd)
}
