package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"propjournal/internal/challenge"
	"propjournal/internal/consolidate"
	"propjournal/internal/errors"
	"propjournal/internal/logging"
	"propjournal/internal/store"
)

// addProgressCommands adds challenge progress evaluation commands.
func addProgressCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newProgressCmd(app))
	rootCmd.AddCommand(newDailyCmd(app))
}

func newProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <account-id>",
		Short: "Evaluate challenge progress for an account",
		Long: `Evaluate an account's trades against its challenge rules: trailing
drawdown, daily loss limit, consistency rule, profit target, and
minimum trading days.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			acct, err := requireAccount(cmd, app, args[0])
			if err != nil {
				return err
			}

			rawTrades, err := app.Store.GetTrades(cmd.Context(), store.TradeFilter{AccountID: acct.ID})
			if err != nil {
				return err
			}
			trades := challenge.FromConsolidated(consolidate.Consolidate(rawTrades))

			th := challenge.Thresholds{
				DailyLossWarnPct:   app.Config.Rules.DailyLossWarnPercent,
				DailyLossDangerPct: app.Config.Rules.DailyLossDangerPercent,
			}
			progress := challenge.Evaluate(trades, *acct, th)
			logging.LogEvaluation(app.Logger, acct.ID, progress.NetPnL, progress.CurrentDrawdownUsed, progress.ProfitTargetPct)

			if progress.HasHitDrawdownLimit {
				logging.LogBreach(app.Logger, acct.ID, "max_drawdown", progress.CurrentDrawdownUsed, acct.MaxDrawdown)
			}
			if progress.ConsistencyBreached {
				logging.LogBreach(app.Logger, acct.ID, "consistency", progress.ConsistencyPct, float64(acct.ConsistencyRulePercent))
			}

			if output.IsJSON() {
				return output.JSON(progress)
			}
			renderProgress(output, acct.Name, acct.MinTradingDays, progress)
			return nil
		},
	}
}

func renderProgress(output *Output, name string, minDays int, p challenge.Progress) {
	output.Bold("Challenge progress: %s", name)
	output.Println()

	output.Printf("  Net PnL:        %s\n", output.FormatPnL(p.NetPnL))
	output.Printf("  Profit target:  %s %.1f%%\n", output.ProgressBar(p.ProfitTargetPct, 20), p.ProfitTargetPct)
	output.Printf("  Win rate:       %.1f%%\n", p.WinRate)
	days := fmt.Sprintf("%d", p.TradingDays)
	if minDays > 0 {
		days += fmt.Sprintf(" (min %d)", minDays)
	}
	output.Printf("  Trading days:   %s\n", days)
	output.Println()

	output.Bold("Drawdown")
	output.Printf("  Peak balance:   %s\n", FormatCurrency(p.PeakBalance))
	output.Printf("  Used:           %s (max seen %s)\n", FormatCurrency(p.CurrentDrawdownUsed), FormatCurrency(p.MaxTrailingDrawdown))
	output.Printf("  Remaining:      %s\n", FormatCurrency(p.DDRemaining))
	if p.HasHitDrawdownLimit {
		output.Error("  ✗ DRAWDOWN LIMIT HIT")
	}
	output.Println()

	output.Bold("Daily loss")
	output.Printf("  Worst day:      %s\n", output.FormatPnL(p.DailyLossWorstDay))
	output.Printf("  Usage:          %s %.1f%% [%s]\n", output.ProgressBar(p.DailyLossUsedPct, 20), p.DailyLossUsedPct, output.AlertText(string(p.DailyLossAlert)))
	output.Println()

	output.Bold("Consistency")
	output.Printf("  Best day:       %s (%.1f%% of profit target)\n", output.FormatPnL(p.BestDayPnL), p.ConsistencyPct)
	if p.ConsistencyBreached {
		output.Error("  ✗ Consistency rule breached")
	}
}

func newDailyCmd(app *App) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show daily PnL breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			filter := store.TradeFilter{AccountID: accountID}
			rawTrades, err := app.Store.GetTrades(cmd.Context(), filter)
			if err != nil {
				return err
			}
			trades := challenge.FromConsolidated(consolidate.Consolidate(rawTrades))
			daily := challenge.DailyPnL(trades)
			stats := challenge.Daily(trades)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"daily": daily,
					"stats": stats,
				})
			}
			if stats.Days == 0 {
				output.Dim("No trades found.")
				return nil
			}

			dates := make([]string, 0, len(daily))
			for date := range daily {
				dates = append(dates, date)
			}
			sort.Strings(dates)

			table := NewTable(output, "DATE", "PNL")
			for _, date := range dates {
				table.AddRow(date, output.FormatPnL(daily[date]))
			}
			table.Render()
			output.Println()
			output.Printf("  Mean:   %s\n", output.FormatPnL(stats.MeanPnL))
			output.Printf("  StdDev: %s\n", FormatCurrency(stats.StdDevPnL))
			output.Printf("  Best:   %s   Worst: %s\n", output.FormatPnL(stats.BestDay), output.FormatPnL(stats.WorstDay))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "filter by account id")
	return cmd
}
