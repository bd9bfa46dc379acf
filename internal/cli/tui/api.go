package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/studycost/internal/charts"
	"github.com/haskel/studycost/internal/monitor"
	"github.com/haskel/studycost/internal/session"
)

var (
	// errNotFound marks a 404, which means "nothing yet" for session views.
	errNotFound = errors.New("not found")
	// errUnavailable marks a 503, returned for EDA when no dataset is loaded.
	errUnavailable = errors.New("unavailable")
)

// Messages for tea.Cmd
type statusMsg struct {
	data *monitor.Status
	err  error
}

type snapshotMsg struct {
	data *session.Snapshot
	err  error
}

type visualizeMsg struct {
	charts []charts.Chart
	err    error
}

type edaMsg struct {
	charts []charts.Chart
	err    error
}

type tickMsg time.Time

// API client for TUI
type apiClient struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
}

func newAPIClient(cfg Config) *apiClient {
	return &apiClient{
		baseURL: cfg.ServerURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		user:     cfg.User,
		password: cfg.Password,
	}
}

func (c *apiClient) getJSON(path string, v any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return errUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &body) == nil && body.Message != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, body.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

type chartsResponse struct {
	Charts []charts.Chart `json:"charts"`
}

// fetchStatus fetches status from API as tea.Cmd
func fetchStatus(cfg Config) tea.Cmd {
	return func() tea.Msg {
		var status monitor.Status
		if err := newAPIClient(cfg).getJSON("/status", &status); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{data: &status}
	}
}

// fetchSnapshot fetches the session's last estimate.
func fetchSnapshot(cfg Config) tea.Cmd {
	return func() tea.Msg {
		if cfg.SessionID == "" {
			return snapshotMsg{err: errNotFound}
		}
		var snap session.Snapshot
		if err := newAPIClient(cfg).getJSON("/v1/sessions/"+cfg.SessionID, &snap); err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{data: &snap}
	}
}

// fetchVisualize fetches the charts of the session's last estimate.
func fetchVisualize(cfg Config) tea.Cmd {
	return func() tea.Msg {
		if cfg.SessionID == "" {
			return visualizeMsg{err: errNotFound}
		}
		var resp chartsResponse
		if err := newAPIClient(cfg).getJSON("/v1/sessions/"+cfg.SessionID+"/charts", &resp); err != nil {
			return visualizeMsg{err: err}
		}
		return visualizeMsg{charts: resp.Charts}
	}
}

// fetchEDA fetches the dataset overview charts.
func fetchEDA(cfg Config) tea.Cmd {
	return func() tea.Msg {
		var resp chartsResponse
		if err := newAPIClient(cfg).getJSON("/v1/eda/charts", &resp); err != nil {
			return edaMsg{err: err}
		}
		return edaMsg{charts: resp.Charts}
	}
}

// tick creates a periodic tick command
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
