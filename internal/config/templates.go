package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Prop Journal Configuration

[journal]
# Path to the SQLite journal database. Empty uses the config directory.
database_path = ""
# Timezone used for display (trading days are always bucketed in UTC)
timezone = "UTC"

[rules]
# Daily loss usage percentage that triggers a warning alert
daily_loss_warn_percent = 70.0
# Daily loss usage percentage that triggers a danger alert
daily_loss_danger_percent = 90.0

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
# Time format
time_format = "15:04:05"

[coach]
# Enable the AI trade coach (requires an OpenAI key in credentials.toml)
enabled = false
# LLM model to use
model = "gpt-4o"
# Temperature for LLM responses (0.0 - 2.0)
temperature = 0.7
# Maximum tokens for LLM responses
max_tokens = 2048
`

const credentialsTemplate = `# Prop Journal Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[openai]
api_key = ""
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return fmt.Errorf("credentials file not found, created template at %s", path)
}
