package config

import (
	"math"
	"strings"

	"github.com/theirongolddev/waniala/internal/model"
)

// QuickExpense is a one-tap expense preset for the mill.
type QuickExpense struct {
	Name   string  `toml:"name"`
	Amount float64 `toml:"amount,omitempty"` // shillings; zero means ask
}

// DefaultAmount returns the preset amount as Money.
func (q QuickExpense) DefaultAmount() model.Money {
	return model.Money(math.Round(q.Amount * 100))
}

// DefaultQuickExpenses returns the built-in presets.
func DefaultQuickExpenses() []QuickExpense {
	return []QuickExpense{
		{Name: "Charcoal", Amount: 500},
		{Name: "Maize", Amount: 2000},
		{Name: "Maintenance", Amount: 1000},
		{Name: "Transport", Amount: 300},
		{Name: "Packaging", Amount: 200},
		{Name: "Other"},
	}
}

// LookupQuickExpense finds a preset by name, case-insensitively.
func (c Config) LookupQuickExpense(name string) (QuickExpense, bool) {
	name = strings.TrimSpace(name)
	for _, q := range c.QuickExpenses {
		if strings.EqualFold(q.Name, name) {
			return q, true
		}
	}
	return QuickExpense{}, false
}

// QuickExpenseNote is stored in the notes of every quick expense entry.
const QuickExpenseNote = "Quick expense entry"

// QuickExpenseRecord builds the mill record for a quick expense on day.
func QuickExpenseRecord(name string, amount model.Money, day string) model.MillRecord {
	return model.MillRecord{
		ID:                 model.NewID(),
		Date:               day,
		ExpenseDescription: name,
		ExpenseAmount:      amount,
		Notes:              QuickExpenseNote,
	}
}
