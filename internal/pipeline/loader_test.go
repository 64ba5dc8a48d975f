package pipeline

import (
	"context"
	"testing"

	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/store"

	"go.uber.org/zap/zaptest"
)

func TestLoadAll(t *testing.T) {
	st := store.New(store.NewMemory(), zaptest.NewLogger(t))
	ctx := context.Background()

	_ = st.AppendMill(ctx, model.MillRecord{ID: "m", Date: "2024-01-01"})
	_ = st.SaveRental(ctx, model.RentalRecord{ID: "r"})
	_ = st.AddToRepairFund(ctx, 1234)

	calls := 0
	res, err := LoadAll(ctx, st, func(current, total int) {
		calls++
		if total != 4 || current < 1 || current > 4 {
			t.Errorf("progress %d/%d", current, total)
		}
	})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(res.Mill) != 1 || len(res.Rentals) != 1 || res.RepairFund != 1234 || len(res.Summaries) != 0 {
		t.Errorf("LoadAll = %+v", res)
	}
	if res.Summaries == nil {
		t.Error("Summaries is nil, want empty slice")
	}
}

func TestLoadAllCancelled(t *testing.T) {
	st := store.New(store.NewMemory(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadAll(ctx, st, nil); err == nil {
		t.Error("LoadAll succeeded with cancelled context")
	}
}
