package main

import (
	"os"
	"strings"

	"propjournal/internal/cli"
	"propjournal/internal/config"
	"propjournal/internal/logging"
)

// configDirFromArgs scans for --config before the full command tree parses
// flags, accepting both the space-separated and --config=<dir> forms.
func configDirFromArgs(args []string) string {
	configDir := ""
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			configDir = args[i+1]
		case strings.HasPrefix(arg, "--config="):
			configDir = strings.TrimPrefix(arg, "--config=")
		}
	}
	return configDir
}

func main() {
	cfg, err := config.Load(configDirFromArgs(os.Args))
	if err != nil {
		os.Stderr.WriteString("propjournal: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
