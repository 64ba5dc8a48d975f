package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/waniala/internal/cli"
	"github.com/theirongolddev/waniala/internal/config"
	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"
	"github.com/theirongolddev/waniala/internal/tui/components"
	"github.com/theirongolddev/waniala/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type formKind int

const (
	formNone formKind = iota
	formMill
	formQuick
	formRental
	formDeleteRental
	formFund
	formSetup
)

func (k formKind) title() string {
	switch k {
	case formMill:
		return "New Mill Entry"
	case formQuick:
		return "Quick Expense"
	case formRental:
		return "Rental"
	case formDeleteRental:
		return "Delete Rental"
	case formFund:
		return "Repair Fund"
	case formSetup:
		return "Welcome to waniala"
	}
	return ""
}

// formValues backs every form field. It lives on the heap so the pointers
// bound into a huh form survive App being copied between updates.
type formValues struct {
	// Mill entry
	Date        string
	Income      string
	Electricity string
	ExpenseDesc string
	Expense     string
	Savings     string
	Notes       string

	// Quick expense and fund adjustment
	Preset string
	Amount string

	// Rental
	RentalID string
	Room     string
	Tenant   string
	Rent     string
	DatePaid string
	Status   string
	Confirm  bool

	// First-run setup
	BusinessName string
	Theme        string
	AutoRefresh  bool
	RefreshSecs  string
}

func newSetupValues(cfg config.Config) *formValues {
	return &formValues{
		BusinessName: cfg.General.BusinessName,
		Theme:        cfg.Appearance.Theme,
		AutoRefresh:  cfg.Dashboard.AutoRefresh,
		RefreshSecs:  strconv.Itoa(cfg.Dashboard.RefreshSecs),
	}
}

func rentalValues(r model.RentalRecord) *formValues {
	v := &formValues{
		RentalID: r.ID,
		Room:     r.RoomNumber,
		Tenant:   r.TenantName,
		DatePaid: r.DatePaid,
		Status:   string(r.PaymentStatus),
	}
	if r.RentAmount != 0 {
		v.Rent = r.RentAmount.Decimal()
	}
	return v
}

func validateDay(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("date is required")
	}
	_, err := model.ParseDay(s)
	return err
}

// validateAmount accepts an empty field; other input must parse.
func validateAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := model.ParseMoney(s); err != nil {
		return errors.New("not an amount")
	}
	return nil
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func newMillForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Value(&v.Date).Validate(validateDay),
			huh.NewInput().Title("Income from grinding (Ksh)").
				Description("Leave empty if no income today").
				Value(&v.Income).Validate(validateAmount),
			huh.NewInput().Title("Electricity (Ksh)").Value(&v.Electricity).Validate(validateAmount),
		),
		huh.NewGroup(
			huh.NewInput().Title("Expense description").Placeholder("e.g. Maize, Charcoal").Value(&v.ExpenseDesc),
			huh.NewInput().Title("Expense amount (Ksh)").Value(&v.Expense).Validate(validateAmount),
			huh.NewInput().Title("Savings (Ksh)").Value(&v.Savings).Validate(validateAmount),
			huh.NewText().Title("Notes").Value(&v.Notes),
		),
	)
}

func newQuickForm(v *formValues, presets []config.QuickExpense) *huh.Form {
	opts := make([]huh.Option[string], 0, len(presets))
	for _, q := range presets {
		label := q.Name
		if amt := q.DefaultAmount(); amt > 0 {
			label += " (" + cli.FormatCurrency(amt) + ")"
		}
		opts = append(opts, huh.NewOption(label, q.Name))
	}
	if v.Preset == "" && len(presets) > 0 {
		v.Preset = presets[0].Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Expense").Options(opts...).Value(&v.Preset),
			huh.NewInput().Title("Amount (Ksh)").
				Description("Leave empty to use the preset amount").
				Value(&v.Amount).Validate(validateAmount),
		),
	)
}

func newRentalForm(v *formValues) *huh.Form {
	if v.Status == "" {
		v.Status = string(model.StatusPending)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Room number").Placeholder("e.g. Room 1, Studio A").
				Value(&v.Room).Validate(validateRequired("room number")),
			huh.NewInput().Title("Tenant name").Value(&v.Tenant),
			huh.NewInput().Title("Rent amount (Ksh)").Value(&v.Rent).Validate(validateAmount),
			huh.NewInput().Title("Date paid").Value(&v.DatePaid).Validate(validateDay),
			huh.NewSelect[string]().Title("Payment status").
				Options(
					huh.NewOption("Pending", string(model.StatusPending)),
					huh.NewOption("Paid", string(model.StatusPaid)),
				).
				Value(&v.Status),
		),
	)
}

func newDeleteForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", v.Room)).
				Description("The rental record is removed permanently.").
				Affirmative("Delete").
				Negative("Keep").
				Value(&v.Confirm),
		),
	)
}

func newFundForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Amount to add (Ksh)").
				Description("Use a negative amount to record money taken out for repairs").
				Value(&v.Amount).
				Validate(func(s string) error {
					m, err := model.ParseMoney(s)
					if err != nil {
						return errors.New("not an amount")
					}
					if m == 0 {
						return errors.New("amount must not be zero")
					}
					return nil
				}),
		),
	)
}

func newSetupForm(v *formValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to waniala").
				Description("Bookkeeping for the posho mill and the rental rooms.\nThese settings are saved to "+config.ConfigPath()+"."),
			huh.NewInput().Title("Business name").Value(&v.BusinessName).Validate(validateRequired("business name")),
			huh.NewSelect[string]().Title("Theme").Options(themeOpts...).Value(&v.Theme),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Refresh the dashboard automatically?").Value(&v.AutoRefresh),
			huh.NewInput().Title("Refresh every (seconds)").Value(&v.RefreshSecs).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return errors.New("enter a whole number of seconds")
					}
					return nil
				}),
		),
	)
}

// openForm shows a modal form of kind bound to v.
func (a *App) openForm(kind formKind, v *formValues) tea.Cmd {
	var form *huh.Form
	switch kind {
	case formMill:
		form = newMillForm(v)
	case formQuick:
		form = newQuickForm(v, a.cfg.QuickExpenses)
	case formRental:
		form = newRentalForm(v)
	case formDeleteRental:
		form = newDeleteForm(v)
	case formFund:
		form = newFundForm(v)
	case formSetup:
		form = newSetupForm(v)
	default:
		return nil
	}
	a.form = form.WithTheme(huh.ThemeCharm()).WithShowHelp(true).WithWidth(a.formWidth())
	a.formKind = kind
	a.formVals = v
	return a.form.Init()
}

func (a *App) closeForm() {
	if a.formKind == formSetup {
		a.needSetup = false
	}
	a.form = nil
	a.formKind = formNone
	a.formVals = nil
}

func (a App) formWidth() int {
	return max(40, min(72, a.contentWidth()-8))
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind, v := a.formKind, a.formVals
		a.closeForm()
		return a, a.submitForm(kind, v)
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

// submitForm turns completed form values into a store write.
func (a *App) submitForm(kind formKind, v *formValues) tea.Cmd {
	today := model.Day(a.now())

	switch kind {
	case formMill:
		r := model.MillRecord{
			ID:                 model.NewID(),
			Date:               strings.TrimSpace(v.Date),
			Income:             model.ParseAmount(v.Income),
			ExpenseDescription: strings.TrimSpace(v.ExpenseDesc),
			ExpenseAmount:      model.ParseAmount(v.Expense),
			Electricity:        model.ParseAmount(v.Electricity),
			Savings:            model.ParseAmount(v.Savings),
			Notes:              strings.TrimSpace(v.Notes),
		}
		return writeCmd(a.st, "Saved mill entry for "+cli.FormatDate(r.Date),
			func(ctx context.Context, st *store.Store) error { return st.AppendMill(ctx, r) })

	case formQuick:
		preset, ok := a.cfg.LookupQuickExpense(v.Preset)
		if !ok {
			a.setStatus("unknown quick expense "+v.Preset, true)
			return nil
		}
		amount := preset.DefaultAmount()
		if strings.TrimSpace(v.Amount) != "" {
			amount = model.ParseAmount(v.Amount)
		}
		if amount <= 0 {
			a.setStatus(preset.Name+" needs an amount", true)
			return nil
		}
		r := config.QuickExpenseRecord(preset.Name, amount, today)
		return writeCmd(a.st, fmt.Sprintf("Recorded %s %s", preset.Name, cli.FormatCurrency(amount)),
			func(ctx context.Context, st *store.Store) error { return st.AppendMill(ctx, r) })

	case formRental:
		r := model.RentalRecord{
			ID:            v.RentalID,
			RoomNumber:    strings.TrimSpace(v.Room),
			TenantName:    strings.TrimSpace(v.Tenant),
			RentAmount:    model.ParseAmount(v.Rent),
			DatePaid:      strings.TrimSpace(v.DatePaid),
			PaymentStatus: model.PaymentStatus(v.Status),
		}
		verb := "Updated"
		if r.ID == "" {
			r.ID = model.NewID()
			verb = "Added"
		}
		if r.DatePaid == "" {
			r.DatePaid = today
		}
		if r.PaymentStatus == "" {
			r.PaymentStatus = model.StatusPending
		}
		return writeCmd(a.st, verb+" "+r.RoomNumber,
			func(ctx context.Context, st *store.Store) error { return st.SaveRental(ctx, r) })

	case formDeleteRental:
		if !v.Confirm {
			return nil
		}
		id := v.RentalID
		return writeCmd(a.st, "Deleted "+v.Room,
			func(ctx context.Context, st *store.Store) error { return st.DeleteRental(ctx, id) })

	case formFund:
		amount, err := model.ParseMoney(v.Amount)
		if err != nil {
			a.setStatus(err.Error(), true)
			return nil
		}
		return writeCmd(a.st, "Repair fund "+cli.FormatDelta(amount, 0),
			func(ctx context.Context, st *store.Store) error { return st.AddToRepairFund(ctx, amount) })

	case formSetup:
		secs, _ := strconv.Atoi(strings.TrimSpace(v.RefreshSecs))
		secs = max(1, secs)
		err := a.saveConfig(func(c *config.Config) {
			c.General.BusinessName = strings.TrimSpace(v.BusinessName)
			c.Appearance.Theme = v.Theme
			c.Dashboard.AutoRefresh = v.AutoRefresh
			c.Dashboard.RefreshSecs = secs
		})
		theme.SetActive(v.Theme)
		a.autoRefresh = v.AutoRefresh
		a.refreshInterval = a.cfg.RefreshInterval()
		if err != nil {
			a.setStatus("saving config: "+err.Error(), true)
		} else {
			a.setStatus("Settings saved", false)
		}
	}
	return nil
}

func (a App) viewForm() string {
	t := theme.Active
	card := components.ContentCard(a.formKind.title(), a.form.View(), a.formWidth()+4)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// toggleRentalCmd flips the paid status of r.
func (a App) toggleRentalCmd(r model.RentalRecord) tea.Cmd {
	next := pipeline.ToggleStatus(r, model.Day(a.now()))
	text := fmt.Sprintf("%s marked %s", r.RoomNumber, next.PaymentStatus)
	return writeCmd(a.st, text, func(ctx context.Context, st *store.Store) error {
		return st.SaveRental(ctx, next)
	})
}
