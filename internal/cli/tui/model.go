package tui

import (
	"time"

	"github.com/haskel/studycost/internal/charts"
	"github.com/haskel/studycost/internal/monitor"
	"github.com/haskel/studycost/internal/session"
)

// Config holds TUI configuration
type Config struct {
	ServerURL       string
	RefreshInterval time.Duration
	User            string
	Password        string
	// SessionID selects the session shown on the Predict and Visualize tabs.
	SessionID string
}

// Tab is one dashboard view.
type Tab int

const (
	TabPredict Tab = iota
	TabVisualize
	TabEDA
)

var tabNames = []string{"Predict", "Visualize", "EDA"}

func (t Tab) String() string {
	return tabNames[t]
}

// Model represents the TUI state
type Model struct {
	config Config
	tab    Tab

	// Data from API
	status    *monitor.Status
	snapshot  *session.Snapshot
	visualize []charts.Chart
	eda       []charts.Chart

	// Per-view errors; errNotFound means there is nothing to show yet.
	snapshotErr  error
	visualizeErr error
	edaErr       error

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	return Model{
		config:  cfg,
		loading: true,
	}
}
