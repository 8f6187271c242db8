// Package cmd implements the nexus command-line interface.
package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nexuscore/nexus/internal/app"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/log"
)

var (
	flagVerbose  bool
	flagJSONLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Nexus - your personal knowledge assistant",
	Long: `Nexus is a personal knowledge assistant with long-term memory.

Save notes and documents into its memory, then chat: answers are grounded
in what you taught it. Running nexus without a subcommand starts an
interactive chat.`,
	RunE:          runChat,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLogs, "json-logs", false, "emit logs as JSON")
}

// newLogger builds the process logger from flags and config.
func newLogger(cfg *config.Config) log.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	return log.New(log.Config{Level: level, JSON: flagJSONLogs || cfg.LogJSON})
}

// setupApp loads configuration and wires the application container.
// A missing API key fails here, before any command logic runs.
func setupApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.Setup(ctx, cfg, newLogger(cfg))
}
