// Package pipeline derives display figures from the stored collections.
// Every function here is pure: same records in, same figures out.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
)

// repairFundPercent is the share of monthly income suggested for repairs.
const repairFundPercent = 10

// DailyBalance is what a mill day leaves after expenses, electricity and
// savings. Savings count as an outflow.
func DailyBalance(r model.MillRecord) model.Money {
	return r.Income - (r.ExpenseAmount + r.Electricity + r.Savings)
}

// MonthlyTotals sums the mill records dated in the given month. Records are
// matched on the year and month written in their date string; records with
// an unparsable date are skipped.
func MonthlyTotals(records []model.MillRecord, month time.Month, year int) model.MonthlyTotals {
	t := model.MonthlyTotals{Month: month, Year: year}
	days := make(map[string]struct{})

	for _, r := range FilterMillByMonth(records, month, year) {
		t.Records++
		t.TotalIncome += r.Income
		t.TotalExpenses += r.ExpenseAmount + r.Electricity
		t.TotalSavings += r.Savings
		days[dayKey(r)] = struct{}{}
	}

	t.Days = len(days)
	t.NetBalance = t.TotalIncome - t.TotalExpenses - t.TotalSavings
	t.RepairFund = t.TotalIncome.Percent(repairFundPercent)
	return t
}

// RentalTotals sums expected and collected rent over every record.
// Pending is derived, so collected + pending always equals expected.
func RentalTotals(records []model.RentalRecord) model.RentalTotals {
	var t model.RentalTotals
	for _, r := range records {
		t.Rooms++
		t.TotalExpected += r.RentAmount
		if r.IsPaid() {
			t.PaidRooms++
			t.TotalCollected += r.RentAmount
		}
	}
	t.Pending = t.TotalExpected - t.TotalCollected
	return t
}

// DayTotals sums the mill records dated on day (YYYY-MM-DD).
func DayTotals(records []model.MillRecord, day string) model.DayTotals {
	d := model.DayTotals{Date: day}
	for _, r := range FilterMillByDate(records, day) {
		d.Records++
		d.Income += r.Income
		d.Expenses += r.ExpenseAmount + r.Electricity
		d.Savings += r.Savings
		d.Balance += DailyBalance(r)
	}
	return d
}

// SummaryFor builds the monthly summary snapshot for month/year.
func SummaryFor(records []model.MillRecord, month time.Month, year int) model.MonthlySummary {
	t := MonthlyTotals(records, month, year)
	return model.MonthlySummary{
		Month:         month.String(),
		Year:          year,
		TotalIncome:   t.TotalIncome,
		TotalExpenses: t.TotalExpenses,
		TotalSavings:  t.TotalSavings,
		NetBalance:    t.NetBalance,
		RepairFund:    t.RepairFund,
	}
}

// Dashboard computes the overview figures as of now.
func Dashboard(mill []model.MillRecord, rentals []model.RentalRecord, fund model.Money, now time.Time) model.Dashboard {
	return model.Dashboard{
		Month:            now.Month(),
		Year:             now.Year(),
		Mill:             MonthlyTotals(mill, now.Month(), now.Year()),
		Rentals:          RentalTotals(rentals),
		StoredFund:       fund,
		Today:            DayTotals(mill, model.Day(now)),
		TotalMillEntries: len(mill),
	}
}

// AggregateDays returns one entry per day of the month, most recent first.
// Days without records are included as zeros so charts show the gaps.
func AggregateDays(records []model.MillRecord, month time.Month, year int) []model.DayTotals {
	dayMap := make(map[string]*model.DayTotals)
	for _, r := range FilterMillByMonth(records, month, year) {
		key := dayKey(r)
		ds, ok := dayMap[key]
		if !ok {
			ds = &model.DayTotals{Date: key}
			dayMap[key] = ds
		}
		ds.Records++
		ds.Income += r.Income
		ds.Expenses += r.ExpenseAmount + r.Electricity
		ds.Savings += r.Savings
		ds.Balance += DailyBalance(r)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for day := first; day.Month() == month; day = day.AddDate(0, 0, 1) {
		key := model.Day(day)
		if _, ok := dayMap[key]; !ok {
			dayMap[key] = &model.DayTotals{Date: key}
		}
	}

	days := make([]model.DayTotals, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
	return days
}

// FilterMillByMonth returns the records whose date lies in month/year.
func FilterMillByMonth(records []model.MillRecord, month time.Month, year int) []model.MillRecord {
	var result []model.MillRecord
	for _, r := range records {
		d, err := model.ParseDay(r.Date)
		if err != nil {
			continue
		}
		if d.Year() == year && d.Month() == month {
			result = append(result, r)
		}
	}
	return result
}

// FilterMillByDate returns the records dated on day. An empty day matches
// everything.
func FilterMillByDate(records []model.MillRecord, day string) []model.MillRecord {
	if day == "" {
		return records
	}
	var result []model.MillRecord
	for _, r := range records {
		if dayKey(r) == day {
			result = append(result, r)
		}
	}
	return result
}

// SortMillNewestFirst returns a copy ordered by date, newest first. Records
// on the same day keep their insertion order.
func SortMillNewestFirst(records []model.MillRecord) []model.MillRecord {
	out := append([]model.MillRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// SortRentalsByRoom returns a copy ordered by room label.
func SortRentalsByRoom(records []model.RentalRecord) []model.RentalRecord {
	out := append([]model.RentalRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].RoomNumber) < strings.ToLower(out[j].RoomNumber)
	})
	return out
}

// Rental status filters accepted by FilterRentals.
const (
	StatusFilterAll     = "all"
	StatusFilterPaid    = "paid"
	StatusFilterPending = "pending"
)

// FilterRentals keeps records whose room or tenant contains search
// (case-insensitive) and whose status matches status.
func FilterRentals(records []model.RentalRecord, search, status string) []model.RentalRecord {
	search = strings.TrimSpace(search)
	status = strings.ToLower(strings.TrimSpace(status))

	var result []model.RentalRecord
	for _, r := range records {
		if search != "" && !containsIgnoreCase(r.RoomNumber, search) && !containsIgnoreCase(r.TenantName, search) {
			continue
		}
		switch status {
		case StatusFilterPaid:
			if !r.IsPaid() {
				continue
			}
		case StatusFilterPending:
			if r.IsPaid() {
				continue
			}
		}
		result = append(result, r)
	}
	return result
}

// ToggleStatus flips Paid and Pending. Marking a record paid stamps
// DatePaid with today.
func ToggleStatus(r model.RentalRecord, today string) model.RentalRecord {
	if r.IsPaid() {
		r.PaymentStatus = model.StatusPending
		return r
	}
	r.PaymentStatus = model.StatusPaid
	r.DatePaid = today
	return r
}

// SortSummariesNewestFirst orders saved summaries by year then month,
// newest first. Unrecognized month names sort last within their year.
func SortSummariesNewestFirst(sums []model.MonthlySummary) []model.MonthlySummary {
	out := append([]model.MonthlySummary(nil), sums...)
	monthOf := func(s model.MonthlySummary) time.Month {
		m, err := model.ParseMonth(s.Month)
		if err != nil {
			return 0
		}
		return m
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return monthOf(out[i]) > monthOf(out[j])
	})
	return out
}

// PreviousMonth returns the calendar month before the one containing t.
func PreviousMonth(t time.Time) (time.Month, int) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	prev := first.AddDate(0, -1, 0)
	return prev.Month(), prev.Year()
}

// dayKey normalizes a record's date to YYYY-MM-DD.
func dayKey(r model.MillRecord) string {
	d, err := model.ParseDay(r.Date)
	if err != nil {
		return r.Date
	}
	return model.Day(d)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
