package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/scenariosim/internal/catalog"
	"github.com/codex-k8s/scenariosim/internal/engine"
	"github.com/codex-k8s/scenariosim/internal/hooks"
)

// loadCatalog builds the embedded catalog and merges the configured catalog directory.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	settings := SettingsFromContext(cmd.Context())

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load built-in scenarios: %w", err)
	}
	if settings.CatalogDir != "" {
		if err := cat.LoadDir(settings.CatalogDir); err != nil {
			return nil, fmt.Errorf("load scenarios from %q: %w", settings.CatalogDir, err)
		}
		LoggerFromContext(cmd.Context()).Debug("merged scenario directory", "dir", settings.CatalogDir)
	}
	return cat, nil
}

// newEngineFromCmd wires an engine with the command's settings and a log sink.
func newEngineFromCmd(cmd *cobra.Command) (*engine.Engine, error) {
	cat, err := loadCatalog(cmd)
	if err != nil {
		return nil, err
	}
	settings := SettingsFromContext(cmd.Context())
	logger := LoggerFromContext(cmd.Context())

	return engine.New(cat, engine.Options{
		Speed:          settings.Speed,
		AutoStartDelay: settings.AutoStartDelay,
		Logger:         logger,
		Sinks:          []hooks.Sink{hooks.NewLogSink(logger)},
	}), nil
}

// scenarioArg returns args[0] or fallback when no argument is given.
func scenarioArg(args []string, fallback string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return fallback
}

func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", "text", "Output format (text, json, yaml)")
}
