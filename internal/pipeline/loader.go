package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/store"

	"golang.org/x/sync/errgroup"
)

// LoadResult holds every stored collection.
type LoadResult struct {
	Mill       []model.MillRecord
	Rentals    []model.RentalRecord
	RepairFund model.Money
	Summaries  []model.MonthlySummary
}

// ProgressFunc is called as each collection finishes loading.
type ProgressFunc func(current, total int)

// LoadAll reads the four collections concurrently. Store reads never fail,
// so neither does LoadAll; it only stops early if ctx is cancelled.
func LoadAll(ctx context.Context, st *store.Store, progressFn ProgressFunc) (*LoadResult, error) {
	const total = 4
	result := &LoadResult{}
	var done atomic.Int64

	report := func() {
		n := done.Add(1)
		if progressFn != nil {
			progressFn(int(n), total)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Mill = st.MillRecords(gctx)
		report()
		return gctx.Err()
	})
	g.Go(func() error {
		result.Rentals = st.RentalRecords(gctx)
		report()
		return gctx.Err()
	})
	g.Go(func() error {
		result.RepairFund = st.RepairFund(gctx)
		report()
		return gctx.Err()
	})
	g.Go(func() error {
		result.Summaries = st.MonthlySummaries(gctx)
		report()
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
