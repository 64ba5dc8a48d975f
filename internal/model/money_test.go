package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{"1000", 100000},
		{"1,234.5", 123450},
		{"0.05", 5},
		{"12.345", 1235},
		{"12.344", 1234},
		{"-3", -300},
		{".5", 50},
		{"1e3", 100000},
		{"Ksh 250", 25000},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if err != nil {
			t.Errorf("ParseMoney(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMoney(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseMoneyRejectsOverflow(t *testing.T) {
	for _, in := range []string{
		"100000000000000000",
		"-100000000000000000",
		"9223372036854775807",
		"1e30",
		"-1e30",
		"1e17",
	} {
		if got, err := ParseMoney(in); err == nil {
			t.Errorf("ParseMoney(%q) = %s, want out-of-range error", in, got)
		}
		if got := ParseAmount(in); got != 0 {
			t.Errorf("ParseAmount(%q) = %d, want 0", in, got)
		}
	}

	// The largest accepted whole amount still round-trips.
	got, err := ParseMoney("92233720368547757.99")
	if err != nil {
		t.Fatalf("ParseMoney(max) error: %v", err)
	}
	if got.String() != "92233720368547757.99" {
		t.Errorf("max amount = %s", got)
	}
}

func TestMoneyStringExtremes(t *testing.T) {
	if got := Money(math.MinInt64).String(); got != "-92233720368547758.08" {
		t.Errorf("MinInt64 = %s", got)
	}
	if got := Money(math.MaxInt64).String(); got != "92233720368547758.07" {
		t.Errorf("MaxInt64 = %s", got)
	}
}

func TestParseAmountCoercesMalformedToZero(t *testing.T) {
	for _, in := range []string{"", "abc", ".", "1.2.3", "NaN"} {
		if got := ParseAmount(in); got != 0 {
			t.Errorf("ParseAmount(%q) = %d, want 0", in, got)
		}
	}
}

func TestMoneyStringAndDecimal(t *testing.T) {
	tests := []struct {
		m       Money
		str     string
		decimal string
	}{
		{0, "0.00", "0"},
		{100000, "1000.00", "1000"},
		{123450, "1234.50", "1234.5"},
		{5, "0.05", "0.05"},
		{-250, "-2.50", "-2.5"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.str {
			t.Errorf("Money(%d).String() = %q, want %q", tt.m, got, tt.str)
		}
		if got := tt.m.Decimal(); got != tt.decimal {
			t.Errorf("Money(%d).Decimal() = %q, want %q", tt.m, got, tt.decimal)
		}
	}
}

func TestMoneyPercent(t *testing.T) {
	if got := Shillings(2500).Percent(10); got != Shillings(250) {
		t.Errorf("2500 * 10%% = %d, want %d", got, Shillings(250))
	}
	// 10% of 0.05 is half a cent; rounds up.
	if got := Money(5).Percent(10); got != 1 {
		t.Errorf("0.05 * 10%% = %d, want 1", got)
	}
	if got := Money(4).Percent(10); got != 0 {
		t.Errorf("0.04 * 10%% = %d, want 0", got)
	}
}

func TestMillRecordJSONShape(t *testing.T) {
	r := MillRecord{
		ID:            "a",
		Date:          "2024-01-15",
		Income:        Shillings(1000),
		ExpenseAmount: 12050,
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"a","date":"2024-01-15","income":1000,"expenseDescription":"","expenseAmount":120.5,"electricity":0,"savings":0}`
	if string(b) != want {
		t.Errorf("json = %s\nwant   %s", b, want)
	}
}

func TestMoneyUnmarshalLenient(t *testing.T) {
	var r MillRecord
	in := `{"id":"x","date":"2024-01-01","income":"1500","expenseAmount":null,"electricity":"oops","savings":12.5}`
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Income != Shillings(1500) {
		t.Errorf("Income = %d, want %d", r.Income, Shillings(1500))
	}
	if r.ExpenseAmount != 0 || r.Electricity != 0 {
		t.Errorf("malformed amounts = %d/%d, want 0/0", r.ExpenseAmount, r.Electricity)
	}
	if r.Savings != 1250 {
		t.Errorf("Savings = %d, want 1250", r.Savings)
	}
}
