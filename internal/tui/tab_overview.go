package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/tui/components"
	"github.com/theirongolddev/waniala/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a *App) overviewKey(key string) (bool, tea.Cmd) {
	switch key {
	case "a":
		return true, a.openForm(formMill, &formValues{Date: model.Day(a.now())})
	case "e":
		return true, a.openForm(formQuick, &formValues{})
	case "F":
		return true, a.openForm(formFund, &formValues{})
	}
	return false, nil
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	d := a.dash
	var b strings.Builder

	// Row 1: this month's headline figures
	entries := fmt.Sprintf("%d entries this month", d.Mill.Records)
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Income", Value: cli.FormatCurrency(d.Mill.TotalIncome), Note: entries, Color: t.Income()},
		{Label: "Expenses", Value: cli.FormatCurrency(d.Mill.TotalExpenses), Note: "incl. electricity", Color: t.Expense()},
		{Label: "Net Balance", Value: cli.FormatCurrency(d.Mill.NetBalance), Note: "savings " + cli.FormatCurrency(d.Mill.TotalSavings), Color: t.ForBalance(int64(d.Mill.NetBalance))},
		{Label: "Repair Fund", Value: cli.FormatCurrency(d.StoredFund), Note: "10% suggests " + cli.FormatCurrency(d.Mill.RepairFund), Color: t.Fund()},
	}, cw))
	b.WriteString("\n")

	// Row 2: daily income chart for the month so far
	days, values := chartSeries(a.monthDays, d.Today.Date, func(x model.DayTotals) model.Money { return x.Income })
	if len(values) > 0 {
		chartH := 10
		if a.isCompactLayout() {
			chartH = 7
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Daily Income · %s", cli.FormatMonth(d.Month, d.Year)),
			components.BarChart(values, chartDateLabels(days), t.Income(), components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: rentals, today and top expenses
	cards := []func(int) string{a.renderRentalsCard, a.renderTodayCard, a.renderSpendCard}
	if a.isCompactLayout() {
		for _, render := range cards {
			b.WriteString(render(cw))
			b.WriteString("\n")
		}
		return b.String()
	}
	widths := components.LayoutRow(cw, len(cards))
	rendered := make([]string, len(cards))
	for i, render := range cards {
		rendered[i] = render(widths[i])
	}
	b.WriteString(components.CardRow(rendered))
	return b.String()
}

func (a App) renderRentalsCard(w int) string {
	t := theme.Active
	r := a.dash.Rentals
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	if r.Rooms == 0 {
		return components.ContentCard("Rentals", muted.Render("No rooms yet. Press n then a to add one."), w)
	}

	inner := components.CardInnerWidth(w)
	barW := max(6, inner-22)
	var body strings.Builder
	body.WriteString(components.CollectionBar("Paid", r.CollectionRate(), "", 4, barW))
	body.WriteString("\n\n")
	for _, kv := range [][2]string{
		{"Rooms paid", fmt.Sprintf("%d of %d", r.PaidRooms, r.Rooms)},
		{"Collected", cli.FormatCurrency(r.TotalCollected)},
		{"Expected", cli.FormatCurrency(r.TotalExpected)},
		{"Pending", cli.FormatCurrency(r.Pending)},
	} {
		body.WriteString(muted.Render(fmt.Sprintf("%-12s", kv[0])) + value.Render(kv[1]) + "\n")
	}
	return components.ContentCard("Rentals", strings.TrimSuffix(body.String(), "\n"), w)
}

func (a App) renderTodayCard(w int) string {
	t := theme.Active
	today := a.dash.Today
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	balance := lipgloss.NewStyle().Foreground(t.ForBalance(int64(today.Balance))).Background(t.Surface).Bold(true)

	var body strings.Builder
	for _, kv := range [][2]string{
		{"Entries", cli.FormatNumber(int64(today.Records))},
		{"Income", cli.FormatCurrency(today.Income)},
		{"Expenses", cli.FormatCurrency(today.Expenses)},
		{"Savings", cli.FormatCurrency(today.Savings)},
	} {
		body.WriteString(muted.Render(fmt.Sprintf("%-10s", kv[0])) + value.Render(kv[1]) + "\n")
	}
	body.WriteString(muted.Render(fmt.Sprintf("%-10s", "Balance")) + balance.Render(cli.FormatCurrency(today.Balance)))

	return components.ContentCard("Today · "+cli.FormatShortDate(today.Date), body.String(), w)
}

func (a App) renderSpendCard(w int) string {
	t := theme.Active
	if len(a.monthSpend) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("Top Expenses", muted.Render("No expenses this month"), w)
	}
	limit := min(5, len(a.monthSpend))
	items := make([]components.BarItem, limit)
	for i, g := range a.monthSpend[:limit] {
		items[i] = components.BarItem{Label: g.Description, Value: g.Amount.Float(), Note: cli.FormatCompact(g.Amount)}
	}
	return components.ContentCard("Top Expenses", components.HBarList(items, t.Expense(), components.CardInnerWidth(w)), w)
}
