package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
)

// ElectricityLabel names the electricity row in expense breakdowns.
const ElectricityLabel = "Electricity"

// AggregateExpenses groups the month's expense amounts by description,
// with electricity as its own group. Groups are sorted by amount descending.
func AggregateExpenses(records []model.MillRecord, month time.Month, year int) []model.ExpenseGroup {
	byDesc := make(map[string]*model.ExpenseGroup)
	var total model.Money

	add := func(desc string, amount model.Money) {
		if amount == 0 {
			return
		}
		key := strings.ToLower(desc)
		g, ok := byDesc[key]
		if !ok {
			g = &model.ExpenseGroup{Description: desc}
			byDesc[key] = g
		}
		g.Count++
		g.Amount += amount
		total += amount
	}

	for _, r := range FilterMillByMonth(records, month, year) {
		desc := strings.TrimSpace(r.ExpenseDescription)
		if desc == "" {
			desc = "Unspecified"
		}
		add(desc, r.ExpenseAmount)
		add(ElectricityLabel, r.Electricity)
	}

	groups := make([]model.ExpenseGroup, 0, len(byDesc))
	for _, g := range byDesc {
		if total != 0 {
			g.Share = float64(g.Amount) / float64(total)
		}
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Amount != groups[j].Amount {
			return groups[i].Amount > groups[j].Amount
		}
		return groups[i].Description < groups[j].Description
	})
	return groups
}
