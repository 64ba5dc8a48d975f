package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"
	"github.com/theirongolddev/waniala/internal/tui/components"
	"github.com/theirongolddev/waniala/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// millState holds the mill tab's month view.
type millState struct {
	month  time.Month
	year   int
	cursor int
	offset int

	all    []model.DayTotals // every day of the month, newest first
	days   []model.DayTotals // days with entries, newest first
	totals model.MonthlyTotals
	spend  []model.ExpenseGroup
}

func (m *millState) recompute(records []model.MillRecord) {
	m.all = pipeline.AggregateDays(records, m.month, m.year)
	m.days = nil
	for _, d := range m.all {
		if d.Records > 0 {
			m.days = append(m.days, d)
		}
	}
	m.totals = pipeline.MonthlyTotals(records, m.month, m.year)
	m.spend = pipeline.AggregateExpenses(records, m.month, m.year)
	m.cursor = clampCursor(m.cursor, len(m.days))
}

// shift moves the viewed month by delta months.
func (m *millState) shift(delta int) {
	first := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	m.month, m.year = first.Month(), first.Year()
	m.cursor, m.offset = 0, 0
}

func (m millState) selectedDay() (model.DayTotals, bool) {
	if m.cursor < 0 || m.cursor >= len(m.days) {
		return model.DayTotals{}, false
	}
	return m.days[m.cursor], true
}

func (a *App) millKey(key string) (bool, tea.Cmd) {
	switch key {
	case "[":
		a.mill.shift(-1)
		a.mill.recompute(a.books.Mill)
		return true, nil
	case "]":
		a.mill.shift(1)
		a.mill.recompute(a.books.Mill)
		return true, nil
	case "g":
		a.mill.cursor = 0
		return true, nil
	case "G":
		a.mill.cursor = max(0, len(a.mill.days)-1)
		return true, nil
	case "a":
		day := model.Day(a.now())
		if a.mill.month != a.now().Month() || a.mill.year != a.now().Year() {
			if sel, ok := a.mill.selectedDay(); ok {
				day = sel.Date
			}
		}
		return true, a.openForm(formMill, &formValues{Date: day})
	case "e":
		return true, a.openForm(formQuick, &formValues{})
	case "s":
		return true, a.saveSummaryCmd(a.mill.month, a.mill.year)
	}
	return false, nil
}

// saveSummaryCmd stores the monthly summary for month/year. Months
// without entries are refused.
func (a *App) saveSummaryCmd(month time.Month, year int) tea.Cmd {
	if len(pipeline.FilterMillByMonth(a.books.Mill, month, year)) == 0 {
		a.setStatus("No mill entries for "+cli.FormatMonth(month, year), true)
		return nil
	}
	sum := pipeline.SummaryFor(a.books.Mill, month, year)
	return writeCmd(a.st, "Saved summary for "+cli.FormatMonth(month, year),
		func(ctx context.Context, st *store.Store) error { return st.SaveMonthlySummary(ctx, sum) })
}

func (a App) renderMillTab(cw, h int) string {
	t := theme.Active
	m := a.mill
	var b strings.Builder

	title := cli.FormatMonth(m.month, m.year)
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Income · " + title, Value: cli.FormatCurrency(m.totals.TotalIncome), Note: fmt.Sprintf("%d entries over %d days", m.totals.Records, m.totals.Days), Color: t.Income()},
		{Label: "Expenses", Value: cli.FormatCurrency(m.totals.TotalExpenses), Color: t.Expense()},
		{Label: "Savings", Value: cli.FormatCurrency(m.totals.TotalSavings), Color: t.Savings()},
		{Label: "Net Balance", Value: cli.FormatCurrency(m.totals.NetBalance), Note: "repair 10% " + cli.FormatCurrency(m.totals.RepairFund), Color: t.ForBalance(int64(m.totals.NetBalance))},
	}, cw))
	b.WriteString("\n")

	used := lipgloss.Height(b.String())
	listH := max(8, h-used)

	if len(m.days) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString(components.ContentCard("Days",
			muted.Render("No entries for "+title+".  [a] add entry  [e] quick expense  [ ] change month"), cw))
		return b.String()
	}

	if a.isCompactLayout() {
		b.WriteString(a.renderMillDayList(cw, listH/2))
		b.WriteString("\n")
		b.WriteString(a.renderMillDayDetail(cw))
		return b.String()
	}

	leftW := max(38, cw*2/5)
	b.WriteString(components.CardRow([]string{
		a.renderMillDayList(leftW, listH),
		a.renderMillDayDetail(cw - leftW),
	}))
	return b.String()
}

func (a App) renderMillDayList(w, h int) string {
	t := theme.Active
	m := a.mill
	inner := components.CardInnerWidth(w)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var body strings.Builder
	body.WriteString(headStyle.Render(fmt.Sprintf("%-11s %12s %12s", "Day", "Income", "Balance")))
	body.WriteString("\n")

	visible := max(3, h-5) // border, title, header, hint
	offset := m.offset
	if m.cursor < offset {
		offset = m.cursor
	}
	if m.cursor >= offset+visible {
		offset = m.cursor - visible + 1
	}
	end := min(len(m.days), offset+visible)

	for i := offset; i < end; i++ {
		d := m.days[i]
		line := fmt.Sprintf("%-11s %12s %12s", cli.FormatShortDate(d.Date), cli.FormatAmount(d.Income), cli.FormatAmount(d.Balance))
		line = truncStr(line, inner)
		if i == m.cursor {
			body.WriteString(selStyle.Render(fmt.Sprintf("%-*s", inner, line)))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}
	body.WriteString(hintStyle.Render("[j/k] day  [ ] month  [a] add  [s] save summary"))

	return components.ContentCard(fmt.Sprintf("Days · %s", cli.FormatMonth(m.month, m.year)), body.String(), w)
}

func (a App) renderMillDayDetail(w int) string {
	t := theme.Active
	sel, ok := a.mill.selectedDay()
	if !ok {
		return ""
	}
	inner := components.CardInnerWidth(w)

	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	income := lipgloss.NewStyle().Foreground(t.Income()).Background(t.Surface)
	expense := lipgloss.NewStyle().Foreground(t.Expense()).Background(t.Surface)

	var body strings.Builder
	for _, r := range pipeline.FilterMillByDate(a.books.Mill, sel.Date) {
		if r.Income != 0 {
			body.WriteString(muted.Render(fmt.Sprintf("%-22s", "Grinding income")) + income.Render(cli.FormatCurrency(r.Income)) + "\n")
		}
		if r.ExpenseAmount != 0 {
			desc := r.ExpenseDescription
			if desc == "" {
				desc = "Expense"
			}
			body.WriteString(muted.Render(fmt.Sprintf("%-22s", truncStr(desc, 21))) + expense.Render(cli.FormatCurrency(-r.ExpenseAmount)) + "\n")
		}
		if r.Electricity != 0 {
			body.WriteString(muted.Render(fmt.Sprintf("%-22s", pipeline.ElectricityLabel)) + expense.Render(cli.FormatCurrency(-r.Electricity)) + "\n")
		}
		if r.Savings != 0 {
			body.WriteString(muted.Render(fmt.Sprintf("%-22s", "Savings")) + value.Render(cli.FormatCurrency(r.Savings)) + "\n")
		}
		if r.Notes != "" {
			body.WriteString(muted.Render("  "+truncStr(r.Notes, inner-2)) + "\n")
		}
	}
	balance := lipgloss.NewStyle().Foreground(t.ForBalance(int64(sel.Balance))).Background(t.Surface).Bold(true)
	body.WriteString(headStyle.Render(fmt.Sprintf("%-22s", "Day balance")) + balance.Render(cli.FormatCurrency(sel.Balance)))

	if len(a.mill.spend) > 0 {
		limit := min(4, len(a.mill.spend))
		items := make([]components.BarItem, limit)
		for i, g := range a.mill.spend[:limit] {
			items[i] = components.BarItem{Label: g.Description, Value: g.Amount.Float(), Note: cli.FormatPercent(g.Share)}
		}
		body.WriteString("\n\n")
		body.WriteString(headStyle.Render("Month expenses"))
		body.WriteString("\n")
		body.WriteString(components.HBarList(items, t.Expense(), inner))
	}

	return components.ContentCard(cli.FormatDate(sel.Date), body.String(), w)
}
