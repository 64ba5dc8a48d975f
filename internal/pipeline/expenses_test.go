package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
)

func TestAggregateExpenses(t *testing.T) {
	records := []model.MillRecord{
		{Date: "2024-01-02", ExpenseDescription: "Maize", ExpenseAmount: model.Shillings(2000), Electricity: model.Shillings(300)},
		{Date: "2024-01-03", ExpenseDescription: "maize", ExpenseAmount: model.Shillings(1000)},
		{Date: "2024-01-04", ExpenseDescription: "Charcoal", ExpenseAmount: model.Shillings(500), Electricity: model.Shillings(200)},
		{Date: "2024-01-05", ExpenseAmount: model.Shillings(100)},
		{Date: "2024-02-01", ExpenseDescription: "Maize", ExpenseAmount: model.Shillings(9999)},
	}
	groups := AggregateExpenses(records, time.January, 2024)
	if len(groups) != 4 {
		t.Fatalf("groups = %d, want 4: %+v", len(groups), groups)
	}
	if groups[0].Description != "Maize" || groups[0].Amount != model.Shillings(3000) || groups[0].Count != 2 {
		t.Errorf("top group = %+v", groups[0])
	}
	// Equal amounts fall back to alphabetical order.
	if groups[1].Description != "Charcoal" || groups[2].Description != ElectricityLabel {
		t.Errorf("tied groups = %q, %q; want Charcoal, Electricity", groups[1].Description, groups[2].Description)
	}
	if groups[2].Amount != model.Shillings(500) || groups[2].Count != 2 {
		t.Errorf("electricity group = %+v", groups[2])
	}
	if groups[3].Description != "Unspecified" {
		t.Errorf("last group = %+v", groups[3])
	}

	var share float64
	for _, g := range groups {
		share += g.Share
	}
	if share < 0.999 || share > 1.001 {
		t.Errorf("shares sum to %f, want 1", share)
	}
}
