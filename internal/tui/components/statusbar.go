package components

import (
	"strings"

	"github.com/theirongolddev/waniala/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom status bar reports.
type StatusInfo struct {
	Backend     string
	DataAge     string // e.g. "3s ago"
	Refreshing  bool
	AutoRefresh bool
	Message     string // transient result of the last action
	Error       bool   // render Message as a failure
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	if info.Error {
		msgStyle = msgStyle.Foreground(t.Red)
	}

	left := base.Render(" ") + keyStyle.Render("?") + base.Render(" help  ") +
		keyStyle.Render("r") + base.Render(" refresh  ") +
		keyStyle.Render("q") + base.Render(" quit")
	if info.Message != "" {
		left += base.Render("   ") + msgStyle.Render(info.Message)
	}

	var right []string
	if info.Backend != "" {
		right = append(right, info.Backend)
	}
	switch {
	case info.Refreshing:
		right = append(right, "refreshing…")
	case info.DataAge != "":
		right = append(right, "updated "+info.DataAge)
	}
	if info.AutoRefresh {
		right = append(right, "auto")
	}
	rightStr := base.Render(strings.Join(right, " · ") + " ")

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(rightStr))
	return left + base.Render(strings.Repeat(" ", padding)) + rightStr
}
