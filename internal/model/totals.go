package model

import "time"

// MonthlyTotals are the mill figures derived for one calendar month.
// RepairFund here is the 10% suggestion, not the stored fund.
type MonthlyTotals struct {
	Month         time.Month `json:"month"`
	Year          int        `json:"year"`
	Days          int        `json:"days"`
	Records       int        `json:"records"`
	TotalIncome   Money      `json:"totalIncome"`
	TotalExpenses Money      `json:"totalExpenses"`
	TotalSavings  Money      `json:"totalSavings"`
	NetBalance    Money      `json:"netBalance"`
	RepairFund    Money      `json:"repairFund"`
}

// RentalTotals are the rent figures across every rental record.
type RentalTotals struct {
	Rooms          int   `json:"rooms"`
	PaidRooms      int   `json:"paidRooms"`
	TotalExpected  Money `json:"totalExpected"`
	TotalCollected Money `json:"totalCollected"`
	Pending        Money `json:"pending"`
}

// CollectionRate returns collected/expected in [0,1].
func (t RentalTotals) CollectionRate() float64 {
	if t.TotalExpected <= 0 {
		return 0
	}
	return float64(t.TotalCollected) / float64(t.TotalExpected)
}

// DayTotals are the mill figures for a single calendar day.
type DayTotals struct {
	Date     string `json:"date"`
	Records  int    `json:"records"`
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
	Savings  Money  `json:"savings"`
	Balance  Money  `json:"balance"`
}

// ExpenseGroup is the total spent under one expense description.
type ExpenseGroup struct {
	Description string  `json:"description"`
	Count       int     `json:"count"`
	Amount      Money   `json:"amount"`
	Share       float64 `json:"share"`
}

// Dashboard holds the overview card figures.
type Dashboard struct {
	Month            time.Month    `json:"month"`
	Year             int           `json:"year"`
	Mill             MonthlyTotals `json:"mill"`
	Rentals          RentalTotals  `json:"rentals"`
	StoredFund       Money         `json:"storedRepairFund"`
	Today            DayTotals     `json:"today"`
	TotalMillEntries int           `json:"totalMillEntries"`
}
