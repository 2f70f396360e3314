package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"propjournal/internal/errors"
	"propjournal/internal/models"
)

// addAccountCommands adds challenge account management commands.
func addAccountCommands(rootCmd *cobra.Command, app *App) {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage challenge accounts",
		Long:  "Create, list, and update prop-firm challenge accounts and their rule sets.",
	}

	accountCmd.AddCommand(newAccountCreateCmd(app))
	accountCmd.AddCommand(newAccountListCmd(app))
	accountCmd.AddCommand(newAccountShowCmd(app))
	accountCmd.AddCommand(newAccountStatusCmd(app))
	accountCmd.AddCommand(newAccountDeleteCmd(app))

	rootCmd.AddCommand(accountCmd)
}

func newAccountCreateCmd(app *App) *cobra.Command {
	var (
		size           float64
		profitTarget   float64
		maxDrawdown    float64
		dailyLossLimit float64
		minDays        int
		maxDays        int
		trailing       bool
		consistency    int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a challenge account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}
			if size <= 0 {
				return errors.NewValidationError("size", size, "account size must be positive")
			}
			if !models.ValidConsistencyPercent(consistency) {
				return errors.NewValidationError("consistency", consistency, "must be 0, 30, or 50")
			}

			now := time.Now().UTC()
			acct := &models.ChallengeAccount{
				ID:                     ulid.MustNew(ulid.Timestamp(now), ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)).String(),
				Name:                   args[0],
				AccountSize:            size,
				ProfitTarget:           profitTarget,
				MaxDrawdown:            maxDrawdown,
				DailyLossLimit:         dailyLossLimit,
				MinTradingDays:         minDays,
				MaxTradingDays:         maxDays,
				IsTrailingDrawdown:     trailing,
				ConsistencyRulePercent: consistency,
				Status:                 models.AccountActive,
				Stage:                  models.StageEvaluation,
				CreatedAt:              now,
				UpdatedAt:              now,
			}

			if err := app.Store.SaveAccount(cmd.Context(), acct); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(acct)
			}
			output.Success("✓ Account created: %s", acct.ID)
			output.Printf("  %s  size %s  target %s  max DD %s\n", acct.Name, FormatCurrency(acct.AccountSize), FormatCurrency(acct.ProfitTarget), FormatCurrency(acct.MaxDrawdown))
			return nil
		},
	}

	cmd.Flags().Float64Var(&size, "size", 0, "account size in dollars (required)")
	cmd.Flags().Float64Var(&profitTarget, "target", 0, "profit target in dollars")
	cmd.Flags().Float64Var(&maxDrawdown, "max-dd", 0, "maximum drawdown in dollars")
	cmd.Flags().Float64Var(&dailyLossLimit, "daily-loss", 0, "daily loss limit in dollars")
	cmd.Flags().IntVar(&minDays, "min-days", 0, "minimum trading days")
	cmd.Flags().IntVar(&maxDays, "max-days", 0, "maximum trading days (0 = unlimited)")
	cmd.Flags().BoolVar(&trailing, "trailing", false, "drawdown trails the peak balance")
	cmd.Flags().IntVar(&consistency, "consistency", 0, "consistency rule percent (0, 30, or 50)")
	cmd.MarkFlagRequired("size")

	return cmd
}

func newAccountListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List challenge accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}

			accounts, err := app.Store.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(accounts)
			}
			if len(accounts) == 0 {
				output.Dim("No accounts. Create one with 'propjournal account create'.")
				return nil
			}

			table := NewTable(output, "ID", "NAME", "SIZE", "TARGET", "MAX DD", "STAGE", "STATUS")
			for _, a := range accounts {
				table.AddRow(
					TruncateString(a.ID, 12),
					a.Name,
					FormatCurrency(a.AccountSize),
					FormatCurrency(a.ProfitTarget),
					FormatCurrency(a.MaxDrawdown),
					string(a.Stage),
					output.StatusText(string(a.Status)),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newAccountShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show a challenge account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			acct, err := requireAccount(cmd, app, args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(acct)
			}

			lines := []string{
				fmt.Sprintf("Size:          %s", FormatCurrency(acct.AccountSize)),
				fmt.Sprintf("Profit target: %s", FormatCurrency(acct.ProfitTarget)),
				fmt.Sprintf("Max drawdown:  %s (trailing: %v)", FormatCurrency(acct.MaxDrawdown), acct.IsTrailingDrawdown),
				fmt.Sprintf("Daily loss:    %s", FormatCurrency(acct.DailyLossLimit)),
				fmt.Sprintf("Trading days:  min %d, max %d", acct.MinTradingDays, acct.MaxTradingDays),
				fmt.Sprintf("Consistency:   %d%%", acct.ConsistencyRulePercent),
				fmt.Sprintf("Stage:         %s", acct.Stage),
				fmt.Sprintf("Status:        %s", output.StatusText(string(acct.Status))),
				fmt.Sprintf("Created:       %s", FormatDate(acct.CreatedAt)),
			}
			output.Box(acct.Name, lines)
			return nil
		},
	}
}

func newAccountStatusCmd(app *App) *cobra.Command {
	var stage string

	cmd := &cobra.Command{
		Use:   "status <account-id> <active|passed|failed|paused>",
		Short: "Update account status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			acct, err := requireAccount(cmd, app, args[0])
			if err != nil {
				return err
			}

			status := models.AccountStatus(args[1])
			if !models.ValidStatus(status) {
				return errors.NewValidationError("status", args[1], "must be active, passed, failed, or paused")
			}

			newStage := acct.Stage
			if stage != "" {
				newStage = models.AccountStage(stage)
				if !models.ValidStage(newStage) {
					return errors.NewValidationError("stage", stage, "must be evaluation, phase2, or funded")
				}
			}

			if err := app.Store.UpdateAccountStatus(cmd.Context(), acct.ID, status, newStage); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"id": acct.ID, "status": string(status), "stage": string(newStage)})
			}
			output.Success("✓ %s is now %s (%s)", acct.Name, status, newStage)
			return nil
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "", "move to stage: evaluation, phase2, funded")
	return cmd
}

func newAccountDeleteCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Delete a challenge account",
		Long:  "Delete an account. Its trades are kept but unlinked.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			acct, err := requireAccount(cmd, app, args[0])
			if err != nil {
				return err
			}

			if !force {
				output.Warning("Use --force to delete account %s (%s)", acct.ID, acct.Name)
				return nil
			}

			if err := app.Store.DeleteAccount(cmd.Context(), acct.ID); err != nil {
				return err
			}
			output.Success("✓ Account deleted: %s", acct.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm deletion")
	return cmd
}

// requireAccount loads an account or returns a not-found error.
func requireAccount(cmd *cobra.Command, app *App, id string) (*models.ChallengeAccount, error) {
	if app.Store == nil {
		return nil, errors.ErrDatabaseError
	}
	acct, err := app.Store.GetAccount(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, errors.Wrapf(errors.ErrAccountNotFound, "account %s", id)
	}
	return acct, nil
}
