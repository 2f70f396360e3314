// Package config provides configuration management for the journal application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Journal     JournalConfig `mapstructure:"journal"`
	Rules       RulesConfig   `mapstructure:"rules"`
	UI          UIConfig      `mapstructure:"ui"`
	Coach       CoachConfig   `mapstructure:"coach"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// JournalConfig holds journal-related configuration.
type JournalConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	Timezone     string `mapstructure:"timezone"`
}

// RulesConfig holds default challenge-rule thresholds. Per-account limits
// live on the account record; these drive alert classification.
type RulesConfig struct {
	DailyLossWarnPercent   float64 `mapstructure:"daily_loss_warn_percent"`
	DailyLossDangerPercent float64 `mapstructure:"daily_loss_danger_percent"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// CoachConfig holds AI coach configuration.
type CoachConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/propjournal"
	}
	return filepath.Join(home, ".config", "propjournal")
}

// DefaultDatabasePath returns the default database location.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultConfigDir(), "journal.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	// Load main config
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Fill unset paths
	if cfg.Journal.DatabasePath == "" {
		cfg.Journal.DatabasePath = filepath.Join(configDir, "journal.db")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("journal.timezone", "UTC")
	v.SetDefault("rules.daily_loss_warn_percent", 70.0)
	v.SetDefault("rules.daily_loss_danger_percent", 90.0)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.time_format", "15:04:05")
	v.SetDefault("coach.model", "gpt-4o")
	v.SetDefault("coach.temperature", 0.7)
	v.SetDefault("coach.max_tokens", 2048)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	// OpenAI credentials
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}

	// Database location
	if v := os.Getenv("PROPJOURNAL_DB"); v != "" {
		cfg.Journal.DatabasePath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Rules.DailyLossWarnPercent < 0 || c.Rules.DailyLossWarnPercent > 100 {
		return fmt.Errorf("daily_loss_warn_percent must be between 0 and 100")
	}
	if c.Rules.DailyLossDangerPercent < 0 || c.Rules.DailyLossDangerPercent > 100 {
		return fmt.Errorf("daily_loss_danger_percent must be between 0 and 100")
	}
	if c.Rules.DailyLossWarnPercent > c.Rules.DailyLossDangerPercent {
		return fmt.Errorf("daily_loss_warn_percent must not exceed daily_loss_danger_percent")
	}
	if c.Coach.Temperature < 0 || c.Coach.Temperature > 2 {
		return fmt.Errorf("coach temperature must be between 0 and 2")
	}
	if c.Coach.MaxTokens < 0 {
		return fmt.Errorf("coach max_tokens must be non-negative")
	}

	return nil
}

// CoachEnabled returns true when the AI coach is configured and usable.
func (c *Config) CoachEnabled() bool {
	return c.Coach.Enabled && c.Credentials.OpenAI.APIKey != ""
}
