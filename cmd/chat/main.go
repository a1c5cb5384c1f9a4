package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"nexus/internal/app"
	"nexus/internal/config"
	"nexus/internal/logging"
	"nexus/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs always go to a file.
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), "nexus-chat.log")
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: logFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(tui.NewModel(a.Store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
