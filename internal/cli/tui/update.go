package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick(m.config.RefreshInterval))
}

func (m Model) refresh() tea.Cmd {
	return tea.Batch(
		fetchStatus(m.config),
		fetchSnapshot(m.config),
		fetchVisualize(m.config),
		fetchEDA(m.config),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.status = msg.data
			m.lastUpdated = time.Now()
		}
		return m, nil

	case snapshotMsg:
		m.snapshotErr = msg.err
		if msg.err == nil {
			m.snapshot = msg.data
		}
		return m, nil

	case visualizeMsg:
		m.visualizeErr = msg.err
		if msg.err == nil {
			m.visualize = msg.charts
		}
		return m, nil

	case edaMsg:
		m.edaErr = msg.err
		if msg.err == nil {
			m.eda = msg.charts
		}
		return m, nil

	case tickMsg:
		m.loading = true
		return m, tea.Batch(m.refresh(), tick(m.config.RefreshInterval))
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		// Manual refresh
		m.loading = true
		return m, m.refresh()

	case "tab", "right", "l":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		return m, nil

	case "shift+tab", "left", "h":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return m, nil

	case "1":
		m.tab = TabPredict
	case "2":
		m.tab = TabVisualize
	case "3":
		m.tab = TabEDA
	}

	return m, nil
}
