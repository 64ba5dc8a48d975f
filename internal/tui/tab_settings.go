package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/tui/components"
	"github.com/theirongolddev/waniala/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldBusinessName = iota
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldRefreshSecs
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

func (a *App) settingsKey(key string) (bool, tea.Cmd) {
	if key != "enter" {
		return false, nil
	}

	a.settings.saved = false
	a.settings.saveErr = nil

	// Booleans toggle in place.
	if a.settings.cursor == settingsFieldAutoRefresh {
		a.autoRefresh = !a.autoRefresh
		auto := a.autoRefresh
		a.settings.saveErr = a.saveConfig(func(c *config.Config) { c.Dashboard.AutoRefresh = auto })
		a.settings.saved = a.settings.saveErr == nil
		return true, nil
	}

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldBusinessName:
		ti.Placeholder = "Waniala"
		ti.SetValue(a.cfg.General.BusinessName)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldRefreshSecs:
		ti.Placeholder = "seconds, at least 1"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}
	ti.Focus()
	a.settings.input = ti
	a.settings.editing = true
	return true, textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.saveErr = a.settingsSave(strings.TrimSpace(a.settings.input.Value()))
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsSave(val string) error {
	switch a.settings.cursor {
	case settingsFieldBusinessName:
		if val == "" {
			return errors.New("business name must not be empty")
		}
		return a.saveConfig(func(c *config.Config) { c.General.BusinessName = val })
	case settingsFieldTheme:
		if !theme.Valid(val) {
			return fmt.Errorf("unknown theme %q", val)
		}
		theme.SetActive(val)
		return a.saveConfig(func(c *config.Config) { c.Appearance.Theme = val })
	case settingsFieldRefreshSecs:
		secs, err := strconv.Atoi(val)
		if err != nil || secs < 1 {
			return fmt.Errorf("refresh interval %q: want whole seconds, at least 1", val)
		}
		err = a.saveConfig(func(c *config.Config) { c.Dashboard.RefreshSecs = secs })
		a.refreshInterval = a.cfg.RefreshInterval()
		return err
	}
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	fields := [settingsFieldCount][2]string{
		settingsFieldBusinessName: {"Business Name", a.cfg.General.BusinessName},
		settingsFieldTheme:        {"Theme", a.cfg.Appearance.Theme},
		settingsFieldAutoRefresh:  {"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		settingsFieldRefreshSecs:  {"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f[0])))
			formBody.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f[0]+":")) +
				selectedStyle.Render(f[1])
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				line += lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad))
			}
			formBody.WriteString(line)
		default:
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f[0]+":")))
			formBody.WriteString(valueStyle.Render(f[1]))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render("Save failed: " + a.settings.saveErr.Error()))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}
	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var mill, rentals, summaries int
	if a.books != nil {
		mill, rentals, summaries = len(a.books.Mill), len(a.books.Rentals), len(a.books.Summaries)
	}
	var infoBody strings.Builder
	for _, kv := range [][2]string{
		{"Backend", a.backendName()},
		{"Mill entries", cli.FormatNumber(int64(mill))},
		{"Rooms", cli.FormatNumber(int64(rentals))},
		{"Summaries", cli.FormatNumber(int64(summaries))},
		{"Load time", fmt.Sprintf("%.2fs", a.loadTime.Seconds())},
		{"Config file", config.ConfigPath()},
		{"Data directory", config.DataDir()},
	} {
		infoBody.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", kv[0])) + valueStyle.Render(kv[1]) + "\n")
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Books", strings.TrimSuffix(infoBody.String(), "\n"), cw))
	return b.String()
}
