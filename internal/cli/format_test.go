package cli

import (
	"testing"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   model.Money
		want string
	}{
		{0, "Ksh 0.00"},
		{123450, "Ksh 1,234.50"},
		{5, "Ksh 0.05"},
		{100000000, "Ksh 1,000,000.00"},
		{-65000, "Ksh -650.00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2024-01-15":           "15 January 2024",
		"2024-12-01":           "1 December 2024",
		"2024-01-15T08:00:00Z": "15 January 2024",
		"":                     InvalidDate,
		"15/01/2024":           InvalidDate,
	}
	for in, want := range tests {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   model.Money
		want string
	}{
		{model.Shillings(950), "950"},
		{model.Shillings(1500), "1.5K"},
		{model.Shillings(2_500_000), "2.5M"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatNumber(-1000); got != "-1,000" {
		t.Errorf("FormatNumber(-1000) = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(model.Shillings(1500), model.Shillings(1000)); got != "+500.00" {
		t.Errorf("FormatDelta up = %q", got)
	}
	if got := FormatDelta(model.Shillings(1000), model.Shillings(1500)); got != "-500.00" {
		t.Errorf("FormatDelta down = %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := FormatAge(now.Add(-30*time.Second), now); got != "30s ago" {
		t.Errorf("FormatAge = %q", got)
	}
	if got := FormatAge(time.Time{}, now); got != "never" {
		t.Errorf("FormatAge(zero) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Charcoal delivery", 8); got != "Charcoa…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("Maize", 8); got != "Maize" {
		t.Errorf("Truncate short = %q", got)
	}
}
