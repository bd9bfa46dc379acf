package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/studycost/internal/charts"
)

const (
	labelWidth = 22
	barWidth   = 30
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	// Title bar
	sections = append(sections, m.renderTitleBar())
	sections = append(sections, m.renderTabs())

	// Error display
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.status != nil {
		sections = append(sections, m.renderCPUMemory())
	}

	switch m.tab {
	case TabPredict:
		sections = append(sections, m.renderPredict())
	case TabVisualize:
		sections = append(sections, m.renderVisualize())
	case TabEDA:
		sections = append(sections, m.renderEDA())
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("STUDY COST DASHBOARD")

	refreshInfo := fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	if m.loading {
		refreshInfo = "↻ loading..."
	}

	help := helpStyle.Render("q:quit r:refresh tab:switch 1-3:view")

	// Calculate spacing
	rightPart := fmt.Sprintf("%s | %s", refreshInfo, help)
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = inactiveTabStyle.Render(label)
		}
	}
	return "  " + strings.Join(tabs, "   ")
}

func (m Model) renderCPUMemory() string {
	cpuBar := m.renderProgressBar("CPU", m.status.CPU.UsagePercent, 20)
	memBar := m.renderProgressBar("Memory", m.status.Memory.UsagePercent, 20)

	return fmt.Sprintf("  %s    %s", cpuBar, memBar)
}

func (m Model) renderProgressBar(label string, percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	color := getProgressColor(percent)
	filledBar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyBar := progressBarEmptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%s [%s%s] %5.1f%%", labelStyle.Render(label), filledBar, emptyBar, percent)
}

func (m Model) renderPredict() string {
	if m.snapshot == nil {
		return helpStyle.Render("  " + m.emptySessionText(m.snapshotErr))
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("  %s %s",
		labelStyle.Render("Estimated Total Annual Cost:"),
		estimateStyle.Render(m.snapshot.Formatted)))
	lines = append(lines, "")

	header := fmt.Sprintf("  %-*s │ %14s", labelWidth, "Field", "Value")
	lines = append(lines, tableHeaderStyle.Render(header))
	for _, e := range m.snapshot.Record.Entries {
		row := fmt.Sprintf("  %-*s │ %14s", labelWidth, truncate(e.Name, labelWidth), e.Value.String())
		lines = append(lines, tableCellStyle.Render(row))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderVisualize() string {
	if len(m.visualize) == 0 {
		return helpStyle.Render("  " + m.emptySessionText(m.visualizeErr))
	}
	return renderCharts(m.visualize)
}

func (m Model) renderEDA() string {
	switch {
	case errors.Is(m.edaErr, errUnavailable):
		return helpStyle.Render("  No dataset is configured.")
	case m.edaErr != nil:
		return errorStyle.Render(fmt.Sprintf("  Error: %v", m.edaErr))
	case len(m.eda) == 0:
		return helpStyle.Render("  Dataset is empty.")
	}
	return renderCharts(m.eda)
}

func (m Model) emptySessionText(err error) string {
	switch {
	case m.config.SessionID == "":
		return "No session selected. Start the dashboard with --session <id>."
	case err == nil, errors.Is(err, errNotFound):
		return "No prediction yet. Run an estimate with this session first."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func renderCharts(list []charts.Chart) string {
	blocks := make([]string, 0, len(list))
	for _, c := range list {
		blocks = append(blocks, renderChart(c))
	}
	return strings.Join(blocks, "\n\n")
}

// renderChart draws any chart kind as horizontal bars scaled to its maximum.
func renderChart(c charts.Chart) string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  "+c.Title))

	top := c.Max()
	for i, label := range c.Labels {
		if i >= len(c.Values) {
			break
		}
		v := c.Values[i]
		filled := 0
		if top > 0 && v > 0 {
			filled = int(v / top * barWidth)
		}
		if filled > barWidth {
			filled = barWidth
		}

		bar := barStyle.Render(strings.Repeat("█", filled)) +
			progressBarEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, truncate(label, labelWidth))),
			bar,
			valueStyle.Render(formatValue(v))))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	if m.status == nil {
		return ""
	}

	session := m.config.SessionID
	if session == "" {
		session = "-"
	}

	return helpStyle.Render(fmt.Sprintf(
		"  Session: %s │ Goroutines: %s │ Updated: %s",
		session,
		formatNumber(m.status.Process.Goroutines),
		m.lastUpdated.Format("15:04:05"),
	))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// formatValue prints fractions with two decimals and larger values as whole numbers.
func formatValue(v float64) string {
	if v < 1 && v > -1 {
		return fmt.Sprintf("%.2f", v)
	}
	return formatNumber(int(v + 0.5))
}

func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + fmt.Sprintf(",%03d", n%1000)
}
