package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"propjournal/internal/consolidate"
	"propjournal/internal/errors"
	"propjournal/internal/logging"
	"propjournal/internal/models"
	"propjournal/internal/store"
)

// addTradeCommands adds trade listing and linking commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	tradesCmd := &cobra.Command{
		Use:   "trades",
		Short: "View and manage trades",
	}

	tradesCmd.AddCommand(newTradesListCmd(app))
	tradesCmd.AddCommand(newTradesShowCmd(app))
	tradesCmd.AddCommand(newTradesLinkCmd(app))
	tradesCmd.AddCommand(newTradesUnlinkCmd(app))
	tradesCmd.AddCommand(newTradesDeleteCmd(app))

	rootCmd.AddCommand(tradesCmd)
}

// tradeFilterFlags wires the shared filter flags onto a command.
func tradeFilterFlags(cmd *cobra.Command, filter *store.TradeFilter, side, from, to *string) {
	cmd.Flags().StringVar(&filter.AccountID, "account", "", "filter by account id")
	cmd.Flags().BoolVar(&filter.Unlinked, "unlinked", false, "only trades not linked to an account")
	cmd.Flags().StringVar(&filter.Symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(side, "side", "", "filter by side (long/short)")
	cmd.Flags().StringVar(from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum rows")
}

func applyDateRange(filter *store.TradeFilter, from, to string) error {
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return errors.NewValidationError("from", from, "expected YYYY-MM-DD")
		}
		filter.StartDate = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return errors.NewValidationError("to", to, "expected YYYY-MM-DD")
		}
		// Inclusive end of day
		filter.EndDate = t.Add(24*time.Hour - time.Nanosecond)
	}
	return nil
}

func newTradesListCmd(app *App) *cobra.Command {
	var (
		filter store.TradeFilter
		side   string
		from   string
		to     string
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		Long:  "List consolidated trades. Use --raw to see individual fills as imported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}
			if err := applyDateRange(&filter, from, to); err != nil {
				return err
			}
			filter.Side = models.TradeSide(strings.ToLower(side))

			rawTrades, err := app.Store.GetTrades(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if raw {
				return renderRawTrades(output, rawTrades)
			}

			trades := consolidate.Consolidate(rawTrades)
			logging.LogConsolidation(app.Logger, len(rawTrades), len(trades))

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Dim("No trades found.")
				return nil
			}

			table := NewTable(output, "EXIT DATE", "SYMBOL", "SIDE", "QTY", "ENTRY", "AVG EXIT", "PNL", "FILLS", "TAGS")
			for _, t := range trades {
				table.AddRow(
					FormatDate(t.ExitTime),
					t.Symbol,
					string(t.Side),
					PadLeft(strconv.Itoa(t.Qty), 4),
					FormatPrice(t.EntryPrice),
					FormatPrice(t.AvgExitPrice),
					output.FormatPnL(t.PnL),
					strconv.Itoa(len(t.Partials)),
					TruncateString(strings.Join(t.Tags, ","), 24),
				)
			}
			table.Render()
			output.Dim("%d trades (%d raw fills)", len(trades), len(rawTrades))
			return nil
		},
	}

	tradeFilterFlags(cmd, &filter, &side, &from, &to)
	cmd.Flags().BoolVar(&raw, "raw", false, "show raw fills instead of consolidated trades")
	return cmd
}

func renderRawTrades(output *Output, trades []models.RawTrade) error {
	if output.IsJSON() {
		return output.JSON(trades)
	}
	if len(trades) == 0 {
		output.Dim("No trades found.")
		return nil
	}

	table := NewTable(output, "ID", "EXIT", "SYMBOL", "SIDE", "QTY", "PNL", "EXTERNAL ID")
	for _, t := range trades {
		table.AddRow(
			TruncateString(t.ID, 12),
			FormatDateTime(t.ExitTime),
			t.Symbol,
			string(t.Side),
			PadLeft(strconv.Itoa(t.Qty), 4),
			output.FormatPnL(t.PnL),
			TruncateString(t.ExternalID, 24),
		)
	}
	table.Render()
	return nil
}

func newTradesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show a consolidated trade with its fills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			rawTrades, err := app.Store.GetTrades(cmd.Context(), store.TradeFilter{})
			if err != nil {
				return err
			}
			for _, t := range consolidate.Consolidate(rawTrades) {
				if t.ID != args[0] {
					continue
				}
				if output.IsJSON() {
					return output.JSON(t)
				}
				renderTradeDetail(output, t)
				return nil
			}
			return errors.Wrapf(errors.ErrTradeNotFound, "trade %s", args[0])
		},
	}
}

func renderTradeDetail(output *Output, t models.ConsolidatedTrade) {
	output.Bold("%s %s  qty %d", t.Symbol, t.Side, t.Qty)
	output.Printf("  Entry: %s at %s\n", FormatPrice(t.EntryPrice), FormatDateTime(t.EntryTime))
	output.Printf("  Exit:  %s at %s (avg of %d fills)\n", FormatPrice(t.AvgExitPrice), FormatDateTime(t.ExitTime), len(t.Partials))
	output.Printf("  PnL:   %s\n", output.FormatPnL(t.PnL))
	if len(t.Tags) > 0 {
		output.Printf("  Tags:  %s\n", strings.Join(t.Tags, ", "))
	}
	if t.Notes != "" {
		output.Printf("  Notes: %s\n", t.Notes)
	}
	if len(t.Partials) > 1 {
		output.Println()
		table := NewTable(output, "FILL", "QTY", "EXIT PRICE", "EXIT TIME", "PNL")
		for _, p := range t.Partials {
			table.AddRow(
				TruncateString(p.ID, 12),
				strconv.Itoa(p.Qty),
				FormatPrice(p.ExitPrice),
				FormatDateTime(p.ExitTime),
				output.FormatPnL(p.PnL),
			)
		}
		table.Render()
	}
}

func newTradesLinkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "link <account-id> <trade-id>...",
		Short: "Link raw trades to an account",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			acct, err := requireAccount(cmd, app, args[0])
			if err != nil {
				return err
			}

			if err := app.Store.LinkTrades(cmd.Context(), acct.ID, args[1:]); err != nil {
				return err
			}
			output.Success("✓ Linked %d trades to %s", len(args)-1, acct.Name)
			return nil
		},
	}
}

func newTradesUnlinkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <trade-id>...",
		Short: "Unlink raw trades from their account",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			if err := app.Store.UnlinkTrades(cmd.Context(), args); err != nil {
				return err
			}
			output.Success("✓ Unlinked %d trades", len(args))
			return nil
		},
	}
}

func newTradesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a raw trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			if err := app.Store.DeleteTrade(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.Success("✓ Trade deleted: %s", args[0])
			return nil
		},
	}
}
