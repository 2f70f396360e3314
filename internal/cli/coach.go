package cli

import (
	"github.com/spf13/cobra"

	"propjournal/internal/challenge"
	"propjournal/internal/consolidate"
	"propjournal/internal/errors"
	"propjournal/internal/store"
)

// addCoachCommands adds the AI coach command.
func addCoachCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "coach <account-id>",
		Short: "Get AI coaching feedback on an account",
		Long: `Send the account's rules, progress metrics, and recent trades to the
AI coach for review. Requires an OpenAI API key and coach.enabled = true
in the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Coach == nil {
				return errors.Wrap(errors.ErrCoachUnavailable, "set coach.enabled and an OpenAI API key")
			}

			acct, err := requireAccount(cmd, app, args[0])
			if err != nil {
				return err
			}

			rawTrades, err := app.Store.GetTrades(cmd.Context(), store.TradeFilter{AccountID: acct.ID})
			if err != nil {
				return err
			}
			trades := consolidate.Consolidate(rawTrades)

			th := challenge.Thresholds{
				DailyLossWarnPct:   app.Config.Rules.DailyLossWarnPercent,
				DailyLossDangerPct: app.Config.Rules.DailyLossDangerPercent,
			}
			progress := challenge.Evaluate(challenge.FromConsolidated(trades), *acct, th)

			output.Info("Asking the coach about %s...", acct.Name)
			review, err := app.Coach.Review(cmd.Context(), acct, progress, trades)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"account_id": acct.ID, "review": review})
			}
			output.Println()
			output.Println(review)
			return nil
		},
	}

	rootCmd.AddCommand(cmd)
}
