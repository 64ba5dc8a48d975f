// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/model"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyPrefix is printed before every amount.
const CurrencyPrefix = "Ksh"

// InvalidDate is shown in place of a date that cannot be parsed.
const InvalidDate = "Invalid Date"

var printer = message.NewPrinter(language.MustParse("en-KE"))

// FormatCurrency renders an amount with two decimals and digit grouping.
// e.g., 123450 -> "Ksh 1,234.50"
func FormatCurrency(m model.Money) string {
	return CurrencyPrefix + " " + FormatAmount(m)
}

// FormatAmount is FormatCurrency without the prefix.
func FormatAmount(m model.Money) string {
	cents := int64(m)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, printer.Sprintf("%d", cents/100), cents%100)
}

// FormatCompact renders an amount with a K/M suffix for chart labels.
// e.g., 150000 -> "1.5K"
func FormatCompact(m model.Money) string {
	v := m.Float()
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}

// FormatDate renders a stored calendar day in long form.
// e.g., "2024-01-15" -> "15 January 2024"
func FormatDate(s string) string {
	d, err := model.ParseDay(s)
	if err != nil {
		return InvalidDate
	}
	return d.Format("2 January 2006")
}

// FormatShortDate renders a stored calendar day as "Mon 15 Jan".
func FormatShortDate(s string) string {
	d, err := model.ParseDay(s)
	if err != nil {
		return InvalidDate
	}
	return d.Format("Mon 02 Jan")
}

// FormatMonth renders a month heading, e.g. "January 2024".
func FormatMonth(month time.Month, year int) string {
	return fmt.Sprintf("%s %d", month, year)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the change between two amounts with an explicit sign.
func FormatDelta(current, previous model.Money) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatAmount(delta)
	}
	return "-" + FormatAmount(-delta)
}

// FormatAge renders how long ago t was, e.g. "12s ago".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	secs := int64(now.Sub(t).Seconds())
	switch {
	case secs < 1:
		return "just now"
	case secs < 60:
		return fmt.Sprintf("%ds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	default:
		return fmt.Sprintf("%dh %dm ago", secs/3600, (secs%3600)/60)
	}
}

// Truncate shortens s to max runes, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if max <= 0 || len(r) <= max {
		return string(r)
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
