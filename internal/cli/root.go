// Package cli defines the command-line interface for scenariosim.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/scenariosim/internal/config"
	"github.com/codex-k8s/scenariosim/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	LogLevel   logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(ctx context.Context, args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: config.DefaultPath,
		LogLevel:   logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.ExecuteContext(ctx)
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scenariosim",
		Short:         "scenariosim replays cluster and pipeline scenarios in the terminal",
		Long:          "scenariosim is an educational simulator that shows pre-authored cluster topologies, lets you break them, and plays build/deploy pipelines stage by stage.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(config.LoadOptions{
				Path:     opts.ConfigPath,
				Required: cmd.Flags().Changed("config"),
			})
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				settings.LogLevel = cmd.Flag("log-level").Value.String()
			}

			level := logging.ParseLevel(settings.LogLevel)
			opts.LogLevel = level
			logger = logging.NewLogger(cmd.ErrOrStderr(), level)
			logger.Debug("logger initialized", "level", level, "config", opts.ConfigPath)

			ctx := context.WithValue(cmd.Context(), loggerKey{}, logger)
			ctx = context.WithValue(ctx, settingsKey{}, settings)
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "Path to scenariosim.yaml settings file")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newListCommand(),
		newClusterCommand(),
		newPipelineCommand(),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// settingsKey is a private context key used to store resolved settings.
type settingsKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}

// SettingsFromContext returns the resolved settings or the built-in defaults.
func SettingsFromContext(ctx context.Context) *config.Settings {
	if ctx != nil {
		if s, ok := ctx.Value(settingsKey{}).(*config.Settings); ok && s != nil {
			return s
		}
	}
	d := config.Defaults()
	return &d
}
