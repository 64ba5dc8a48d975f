// Package model defines the core data types shared across waniala.
package model

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a currency amount in integer cents.
//
// It marshals to JSON as a plain decimal number ("1000", "1234.5") so the
// persisted collections keep the shape the dashboard has always written.
type Money int64

// Shillings builds a Money from a whole-shilling amount.
func Shillings(n int64) Money { return Money(n * 100) }

// Float returns the amount in shillings as a float, for charts only.
func (m Money) Float() float64 { return float64(m) / 100 }

// String renders the amount with exactly two decimals, e.g. "1234.50".
func (m Money) String() string {
	sign := ""
	u := uint64(m)
	if m < 0 {
		sign = "-"
		u = -u
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/100, u%100)
}

// Decimal renders the shortest decimal form, e.g. "1000" or "1234.5".
func (m Money) Decimal() string {
	s := m.String()
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Percent returns p percent of m, rounded half away from zero to the cent.
func (m Money) Percent(p int64) Money {
	n := int64(m) * p
	q, r := n/100, n%100
	if r >= 50 {
		q++
	} else if r <= -50 {
		q--
	}
	return Money(q)
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string, or null.
// Anything unparsable decodes to zero, matching how form input is coerced.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			s = ""
		}
		*m = ParseAmount(s)
		return nil
	}
	*m = ParseAmount(string(data))
	return nil
}

// maxWhole is the largest whole-shilling amount ParseMoney accepts, leaving
// room for the cents without overflowing int64.
const maxWhole = (math.MaxInt64 - 100) / 100

// ParseMoney parses a decimal amount such as "1,200.50", "-3" or "1e3".
// Fractions beyond the cent are rounded half away from zero.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Ksh"), "KSh")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parsing amount %q: empty", s)
	}

	neg := false
	body := s
	switch body[0] {
	case '-':
		neg = true
		body = body[1:]
	case '+':
		body = body[1:]
	}

	whole, frac, hasDot := strings.Cut(body, ".")
	if !isDigits(whole) || (hasDot && !isDigits(frac)) || (whole == "" && frac == "") {
		// Fall back to float parsing for exponent forms.
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("parsing amount %q: not a number", s)
		}
		c := math.Round(f * 100)
		if math.Abs(c) >= maxWhole*100 {
			return 0, fmt.Errorf("parsing amount %q: out of range", s)
		}
		return Money(c), nil
	}

	var cents int64
	if whole != "" {
		w, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing amount %q: %w", s, err)
		}
		if w > maxWhole {
			return 0, fmt.Errorf("parsing amount %q: out of range", s)
		}
		cents = w * 100
	}
	for len(frac) < 3 {
		frac += "0"
	}
	c, _ := strconv.ParseInt(frac[:2], 10, 64)
	cents += c
	if frac[2] >= '5' {
		cents++
	}
	if neg {
		cents = -cents
	}
	return Money(cents), nil
}

// ParseAmount is ParseMoney with malformed input coerced to zero.
func ParseAmount(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		return 0
	}
	return m
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
