// Package cli provides the command-line interface for the journal application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"propjournal/internal/coach"
	"propjournal/internal/config"
	"propjournal/internal/logging"
	"propjournal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
	Coach  *coach.Coach
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.Journal.DatabasePath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Journal.DatabasePath).Msg("SQLite store initialized")
	}

	// Initialize AI coach if configured
	if cfg.CoachEnabled() {
		llm := coach.NewOpenAIClient(cfg.Credentials.OpenAI.APIKey, cfg.Coach.Model, cfg.Coach.Temperature, cfg.Coach.MaxTokens)
		app.Coach = coach.New(llm, logger)
		logger.Debug().Str("model", cfg.Coach.Model).Msg("AI coach initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "propjournal",
		Short: "Prop Journal - trading journal for prop-firm challenge accounts",
		Long: `Prop Journal is a trading journal CLI for prop-firm challenge traders.

It imports broker fill exports, consolidates partial fills into whole trades,
and tracks challenge account progress against trailing drawdown, daily loss,
consistency, and profit target rules.

Use 'propjournal help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/propjournal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addAccountCommands(rootCmd, app)
	addImportCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addProgressCommands(rootCmd, app)
	addCoachCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Prop Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Journal Configuration")
	output.Printf("  Database:        %s\n", cfg.Journal.DatabasePath)
	output.Printf("  Timezone:        %s\n", cfg.Journal.Timezone)
	output.Println()

	output.Bold("Rule Thresholds")
	output.Printf("  Daily Loss Warn:   %.0f%%\n", cfg.Rules.DailyLossWarnPercent)
	output.Printf("  Daily Loss Danger: %.0f%%\n", cfg.Rules.DailyLossDangerPercent)
	output.Println()

	output.Bold("Coach")
	output.Printf("  Enabled:         %v\n", cfg.Coach.Enabled)
	output.Printf("  Model:           %s\n", cfg.Coach.Model)

	return nil
}
