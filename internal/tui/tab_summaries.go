package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/tui/components"
	"github.com/theirongolddev/waniala/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type summariesState struct {
	cursor int
}

func (a *App) summariesKey(key string) (bool, tea.Cmd) {
	switch key {
	case "s":
		return true, a.saveSummaryCmd(a.now().Month(), a.now().Year())
	case "p":
		month, year := pipeline.PreviousMonth(a.now())
		return true, a.saveSummaryCmd(month, year)
	}
	return false, nil
}

func (a App) renderSummariesTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.summaries) == 0 {
		return components.ContentCard("Monthly Summaries",
			muted.Render("No saved summaries.")+"\n"+
				hintStyle.Render("[s] save this month  [p] save last month"), cw)
	}

	var b strings.Builder

	// Net balance per saved month, oldest left
	n := len(a.summaries)
	values := make([]float64, n)
	labels := make([]string, n)
	for i, s := range a.summaries {
		values[n-1-i] = max(0, s.NetBalance.Float())
		labels[n-1-i] = shortMonth(s)
	}
	if n > 1 {
		b.WriteString(components.ContentCard("Net Balance by Month",
			components.BarChart(values, labels, t.Savings(), components.CardInnerWidth(cw), 8), cw))
		b.WriteString("\n")
	}

	listH := max(6, h-lipgloss.Height(b.String()))
	b.WriteString(a.renderSummaryList(cw, listH))
	return b.String()
}

func (a App) renderSummaryList(w, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	const format = "%-16s %14s %14s %14s %14s %14s"
	var body strings.Builder
	body.WriteString(headStyle.Render(truncStr(fmt.Sprintf(format, "Month", "Income", "Expenses", "Savings", "Net", "Repair fund"), inner)))
	body.WriteString("\n")

	visible := max(2, h-5)
	start := 0
	if a.sums.cursor >= visible {
		start = a.sums.cursor - visible + 1
	}
	end := min(len(a.summaries), start+visible)
	for i := start; i < end; i++ {
		s := a.summaries[i]
		line := truncStr(fmt.Sprintf(format,
			fmt.Sprintf("%s %d", s.Month, s.Year),
			cli.FormatAmount(s.TotalIncome),
			cli.FormatAmount(s.TotalExpenses),
			cli.FormatAmount(s.TotalSavings),
			cli.FormatAmount(s.NetBalance),
			cli.FormatAmount(s.RepairFund)), inner)
		if i == a.sums.cursor {
			body.WriteString(selStyle.Render(fmt.Sprintf("%-*s", inner, line)))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}
	body.WriteString(hintStyle.Render("[s] save this month  [p] save last month"))

	return components.ContentCard(fmt.Sprintf("Saved Summaries (%d)", len(a.summaries)), body.String(), w)
}

// shortMonth labels a summary as e.g. "Jan24".
func shortMonth(s model.MonthlySummary) string {
	m, err := model.ParseMonth(s.Month)
	if err != nil {
		return "?"
	}
	return fmt.Sprintf("%s%02d", m.String()[:3], s.Year%100)
}
