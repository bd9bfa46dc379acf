package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultRefreshInterval is used when Config.RefreshInterval is not positive.
const DefaultRefreshInterval = 2 * time.Second

// Run starts the dashboard and blocks until the user quits.
func Run(cfg Config) error {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	p := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
