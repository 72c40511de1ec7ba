package main

import (
	"context"
	"fmt"

	"doorsmith/cmd/doorsmith/workbench"
	"doorsmith/internal/buildlog"
	"doorsmith/internal/config"
	"doorsmith/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// runInteractive launches the bubbletea configurator.
func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := currentConfig()
	sinks := buildlog.Open(c.Build, logging.Get(logging.CategoryBuild).Zap())
	defer func() {
		if err := sinks.Close(); err != nil {
			logging.BuildError("Closing build sinks: %v", err)
		}
	}()

	builds, unsubscribe := sinks.Bus.Subscribe()
	defer unsubscribe()

	var updates <-chan *config.Config
	if w, err := config.NewWatcher(resolvedConfigPath()); err != nil {
		logging.ConfigWarn("Config hot reload unavailable: %v", err)
	} else if err := w.Start(ctx); err != nil {
		logging.ConfigWarn("Config hot reload unavailable: %v", err)
	} else {
		defer w.Stop()
		updates = w.Updates()
	}

	model := workbench.New(workbench.Options{
		Searcher:      newClient(),
		Sink:          sinks,
		Config:        c,
		ConfigUpdates: updates,
		Builds:        builds,
	})

	logging.Boot("Starting interactive configurator")
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("configurator exited: %w", err)
	}
	if n := sinks.Bus.Dropped(); n > 0 {
		logging.BuildError("Build bus dropped %d payload(s) for slow subscribers", n)
	}
	return nil
}
