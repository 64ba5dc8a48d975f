package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/waniala/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errCanceled is returned when the user aborts a form.
var errCanceled = errors.New("canceled")

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

// amountField parses an optional amount from a flag or form field. Empty
// input is zero; anything else must parse.
func amountField(name, s string) (model.Money, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	m, err := model.ParseMoney(s)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return m, nil
}

// localFlagsChanged reports whether any of cmd's own flags were given.
// Inherited flags such as --backend or --verbose do not count, so they
// never suppress the interactive form.
func localFlagsChanged(cmd *cobra.Command) bool {
	changed := false
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed = true
		}
	})
	return changed
}

func runForm(form *huh.Form) error {
	if err := form.WithTheme(huh.ThemeCharm()).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errCanceled
		}
		return fmt.Errorf("form: %w", err)
	}
	return nil
}

func promptMillRecord(day string) (millInput, error) {
	in := millInput{Date: day}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Date").Value(&in.Date).Validate(validateDay),
			huh.NewInput().Title("Income from grinding (Ksh)").
				Description("Leave empty if no income today").
				Value(&in.Income).Validate(validateAmount),
			huh.NewInput().Title("Electricity (Ksh)").Value(&in.Electricity).Validate(validateAmount),
		),
		huh.NewGroup(
			huh.NewInput().Title("Expense description").Placeholder("e.g. Maize, Charcoal").Value(&in.ExpenseDesc),
			huh.NewInput().Title("Expense amount (Ksh)").Value(&in.Expense).Validate(validateAmount),
			huh.NewInput().Title("Savings (Ksh)").Value(&in.Savings).Validate(validateAmount),
			huh.NewText().Title("Notes").Value(&in.Notes),
		),
	)
	return in, runForm(form)
}

func promptRental(in rentalInput) (rentalInput, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Room number").Placeholder("e.g. Room 1, Studio A").Value(&in.Room).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("room number is required")
					}
					return nil
				}),
			huh.NewInput().Title("Tenant name").Value(&in.Tenant),
			huh.NewInput().Title("Rent amount (Ksh)").Value(&in.Rent).Validate(validateAmount),
			huh.NewInput().Title("Date paid").Value(&in.DatePaid).Validate(validateDay),
			huh.NewSelect[string]().Title("Payment status").
				Options(
					huh.NewOption("Pending", string(model.StatusPending)),
					huh.NewOption("Paid", string(model.StatusPaid)),
				).
				Value(&in.Status),
		),
	)
	return in, runForm(form)
}
