package pipeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
)

func syntheticMill(n int) []model.MillRecord {
	records := make([]model.MillRecord, n)
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := range records {
		records[i] = model.MillRecord{
			ID:                 fmt.Sprint(i),
			Date:               model.Day(start.AddDate(0, 0, i%730)),
			Income:             model.Money(100000 + i),
			ExpenseDescription: []string{"Maize", "Charcoal", "Transport"}[i%3],
			ExpenseAmount:      model.Money(20000),
			Electricity:        model.Money(3000),
			Savings:            model.Money(5000),
		}
	}
	return records
}

func BenchmarkMonthlyTotals(b *testing.B) {
	records := syntheticMill(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = MonthlyTotals(records, time.June, 2024)
	}
}

func BenchmarkAggregateDays(b *testing.B) {
	records := syntheticMill(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateDays(records, time.June, 2024)
	}
}

func BenchmarkAggregateExpenses(b *testing.B) {
	records := syntheticMill(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = AggregateExpenses(records, time.June, 2024)
	}
}
