package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/tui/components"
	"github.com/theirongolddev/waniala/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// statusFilters is the order f cycles through.
var statusFilters = []string{pipeline.StatusFilterAll, pipeline.StatusFilterPending, pipeline.StatusFilterPaid}

// rentalsState holds the rentals tab state.
type rentalsState struct {
	cursor    int
	offset    int
	searching bool
	input     textinput.Model
	query     string
	filter    string
}

func newRentalsState() rentalsState {
	return rentalsState{input: newSearchInput(), filter: pipeline.StatusFilterAll}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "room or tenant"
	ti.CharLimit = 64
	ti.Width = 30
	ti.Prompt = "/ "
	return ti
}

func (a App) selectedRental() (model.RentalRecord, bool) {
	if a.rent.cursor < 0 || a.rent.cursor >= len(a.rentals) {
		return model.RentalRecord{}, false
	}
	return a.rentals[a.rent.cursor], true
}

func (a *App) rentalsKey(key string) (bool, tea.Cmd) {
	switch key {
	case "/":
		a.rent.searching = true
		a.rent.input = newSearchInput()
		a.rent.input.SetValue(a.rent.query)
		a.rent.input.Focus()
		return true, textinput.Blink
	case "f":
		for i, f := range statusFilters {
			if f == a.rent.filter {
				a.rent.filter = statusFilters[(i+1)%len(statusFilters)]
				break
			}
		}
		a.rent.cursor, a.rent.offset = 0, 0
		a.recompute()
		return true, nil
	case "esc":
		if a.rent.query != "" || a.rent.filter != pipeline.StatusFilterAll {
			a.rent.query = ""
			a.rent.filter = pipeline.StatusFilterAll
			a.rent.cursor, a.rent.offset = 0, 0
			a.recompute()
		}
		return true, nil
	case "a":
		return true, a.openForm(formRental, &formValues{DatePaid: model.Day(a.now())})
	case "e", "enter":
		if r, ok := a.selectedRental(); ok {
			return true, a.openForm(formRental, rentalValues(r))
		}
		return true, nil
	case "t", " ":
		if r, ok := a.selectedRental(); ok {
			return true, a.toggleRentalCmd(r)
		}
		return true, nil
	case "d":
		if r, ok := a.selectedRental(); ok {
			return true, a.openForm(formDeleteRental, rentalValues(r))
		}
		return true, nil
	}
	return false, nil
}

// updateRentalsSearch handles key events while the search box is focused.
func (a App) updateRentalsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.rent.query = strings.TrimSpace(a.rent.input.Value())
		a.rent.searching = false
		a.rent.cursor, a.rent.offset = 0, 0
		a.recompute()
		return a, nil
	case "esc":
		a.rent.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.rent.input, cmd = a.rent.input.Update(msg)
	return a, cmd
}

func (a App) renderRentalsTab(cw, h int) string {
	t := theme.Active
	totals := pipeline.RentalTotals(a.books.Rentals)
	var b strings.Builder

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Rooms", Value: cli.FormatNumber(int64(totals.Rooms)), Note: fmt.Sprintf("%d paid", totals.PaidRooms)},
		{Label: "Expected", Value: cli.FormatCurrency(totals.TotalExpected)},
		{Label: "Collected", Value: cli.FormatCurrency(totals.TotalCollected), Note: cli.FormatPercent(totals.CollectionRate()), Color: t.ForCollection(totals.CollectionRate())},
		{Label: "Pending", Value: cli.FormatCurrency(totals.Pending), Color: t.ForStatus(totals.Pending == 0)},
	}, cw))
	b.WriteString("\n")

	listH := max(8, h-lipgloss.Height(b.String()))
	b.WriteString(a.renderRentalsList(cw, listH))
	return b.String()
}

func (a App) renderRentalsList(w, h int) string {
	t := theme.Active
	rs := a.rent
	inner := components.CardInnerWidth(w)

	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	roomW := max(10, min(20, inner/5))
	tenantW := max(10, inner-roomW-14-12-10-4)

	var body strings.Builder
	switch {
	case rs.searching:
		body.WriteString(rs.input.View())
		body.WriteString("\n")
	case rs.query != "" || rs.filter != pipeline.StatusFilterAll:
		filter := "status " + rs.filter
		if rs.query != "" {
			filter = fmt.Sprintf("%q, %s", rs.query, filter)
		}
		body.WriteString(muted.Render(fmt.Sprintf("Showing %d matching %s  [Esc] clear", len(a.rentals), filter)))
		body.WriteString("\n")
	}

	if len(a.rentals) == 0 {
		body.WriteString(muted.Render("No rentals found. [a] add a room"))
		return components.ContentCard("Rentals", body.String(), w)
	}

	body.WriteString(headStyle.Render(fmt.Sprintf("%-*s %-*s %14s %12s %-9s", roomW, "Room", tenantW, "Tenant", "Rent", "Date paid", "Status")))
	body.WriteString("\n")

	visible := max(3, h-6)
	offset := rs.offset
	if rs.cursor < offset {
		offset = rs.cursor
	}
	if rs.cursor >= offset+visible {
		offset = rs.cursor - visible + 1
	}
	end := min(len(a.rentals), offset+visible)

	for i := offset; i < end; i++ {
		r := a.rentals[i]
		cells := fmt.Sprintf("%-*s %-*s %14s %12s ",
			roomW, truncStr(r.RoomNumber, roomW),
			tenantW, truncStr(r.TenantName, tenantW),
			cli.FormatAmount(r.RentAmount),
			r.DatePaid)
		status := string(r.PaymentStatus)
		if status == "" {
			status = string(model.StatusPending)
		}

		base := rowStyle
		if i == rs.cursor {
			base = selStyle
		}
		statusStyle := base.Foreground(t.ForStatus(r.IsPaid()))
		line := base.Render(cells) + statusStyle.Render(fmt.Sprintf("%-9s", status))
		if pad := inner - lipgloss.Width(line); pad > 0 && i == rs.cursor {
			line += base.Render(strings.Repeat(" ", pad))
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	body.WriteString(hintStyle.Render("[t] toggle paid  [a] add  [e] edit  [d] delete  [/] search  [f] filter"))

	return components.ContentCard(fmt.Sprintf("Rentals (%d)", len(a.rentals)), body.String(), w)
}
