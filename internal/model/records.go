package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for every stored date.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidDate is returned when a date string is not a calendar day.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidStatus is returned for a payment status other than Paid or Pending.
	ErrInvalidStatus = errors.New("invalid payment status")
)

// MillRecord is one day's entry for the posho mill. Mill records are
// append-only once written.
type MillRecord struct {
	ID                 string `json:"id"`
	Date               string `json:"date"`
	Income             Money  `json:"income"`
	ExpenseDescription string `json:"expenseDescription"`
	ExpenseAmount      Money  `json:"expenseAmount"`
	Electricity        Money  `json:"electricity"`
	Savings            Money  `json:"savings"`
	Notes              string `json:"notes,omitempty"`
	// Type is "income" or "expense" on entries written by older versions
	// of the dashboard. It is kept as-is and not interpreted.
	Type string `json:"type,omitempty"`
}

// PaymentStatus is whether a rental payment has been received.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "Paid"
	StatusPending PaymentStatus = "Pending"
)

// ParseStatus parses a payment status case-insensitively.
func ParseStatus(s string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return StatusPaid, nil
	case "pending":
		return StatusPending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// RentalRecord is one room's rent entry.
type RentalRecord struct {
	ID            string        `json:"id"`
	RoomNumber    string        `json:"roomNumber"`
	TenantName    string        `json:"tenantName"`
	RentAmount    Money         `json:"rentAmount"`
	DatePaid      string        `json:"datePaid"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// IsPaid reports whether the rent has been collected.
func (r RentalRecord) IsPaid() bool { return r.PaymentStatus == StatusPaid }

// MonthlySummary is a cached snapshot of a month's mill totals, keyed by
// (Month, Year). Month is the English month name.
type MonthlySummary struct {
	Month         string `json:"month"`
	Year          int    `json:"year"`
	TotalIncome   Money  `json:"totalIncome"`
	TotalExpenses Money  `json:"totalExpenses"`
	TotalSavings  Money  `json:"totalSavings"`
	NetBalance    Money  `json:"netBalance"`
	RepairFund    Money  `json:"repairFund"`
}

// ParseDay parses a stored calendar-day string. A longer ISO timestamp is
// accepted and truncated to its date part.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && (s[len(DateLayout)] == 'T' || s[len(DateLayout)] == ' ') {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Day formats t as a stored calendar-day string in t's own location.
func Day(t time.Time) string { return t.Format(DateLayout) }

// ParseMonth accepts "1".."12" or an English month name or its
// three-letter prefix.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && fmt.Sprint(n) == s {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, fmt.Errorf("month %d out of range", n)
	}
	lower := strings.ToLower(s)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name || (len(lower) >= 3 && strings.HasPrefix(name, lower)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}
