package main

import (
	"fmt"
	"os"

	"CapIot.dashboard/internal/config"
	"CapIot.dashboard/internal/repository"
	"CapIot.dashboard/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.LoadConfig(config.SkipValidation())
	if err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// The dashboard server already authenticates upstream.
	endpoint := cfg.DashboardURL + "/api/devices"
	fetcher := repository.NewSensorAPIRepository(endpoint, "", "", cfg.UpstreamTimeout)

	app := tui.NewApp(tui.Config{
		Fetcher:      fetcher,
		PollInterval: cfg.PollInterval,
		Source:       endpoint,
	})
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
