package main

import (
	"context"
	"os"

	"github.com/codex-k8s/scenariosim/internal/cli"
	"github.com/codex-k8s/scenariosim/internal/logging"
)

// main is the entry point for the scenariosim CLI binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(context.Background(), os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
