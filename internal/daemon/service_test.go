package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/store"

	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New(store.NewMemory(), zaptest.NewLogger(t))
	s := New(Config{Backend: store.KindMemory, Interval: 10 * time.Second}, st, zaptest.NewLogger(t))
	s.now = func() time.Time { return time.Date(2024, time.February, 1, 0, 5, 0, 0, time.UTC) }
	return s, st
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		MillEntries:      10,
		Rooms:            4,
		MonthIncome:      model.Shillings(1000),
		RentCollected:    model.Shillings(5000),
		StoredRepairFund: model.Shillings(200),
	}
	curr := Snapshot{
		MillEntries:      12,
		Rooms:            4,
		MonthIncome:      model.Shillings(1750),
		RentCollected:    model.Shillings(8000),
		StoredRepairFund: model.Shillings(200),
	}

	delta := diffSnapshots(prev, curr)
	if delta.MillEntries != 2 {
		t.Fatalf("MillEntries delta = %d, want 2", delta.MillEntries)
	}
	if delta.Rooms != 0 {
		t.Fatalf("Rooms delta = %d, want 0", delta.Rooms)
	}
	if delta.MonthIncome != model.Shillings(750) {
		t.Fatalf("MonthIncome delta = %d, want %d", delta.MonthIncome, model.Shillings(750))
	}
	if delta.RentCollected != model.Shillings(3000) {
		t.Fatalf("RentCollected delta = %d, want %d", delta.RentCollected, model.Shillings(3000))
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, store.New(store.NewMemory(), nil), nil)

	s.publishEvent(Event{Type: "a"})
	s.publishEvent(Event{Type: "b"})
	s.publishEvent(Event{Type: "c"})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{Interval: time.Second}, store.New(store.NewMemory(), nil), nil)
	if s.cfg.Interval != 10*time.Second || s.cfg.EventsBuffer != 200 || s.cfg.Addr != "127.0.0.1:8787" {
		t.Errorf("defaults = %+v", s.cfg)
	}
}

func TestPollOncePublishesChanges(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx)
	if events := s.recentEvents(); len(events) != 1 || events[0].Type != EventSnapshot {
		t.Fatalf("events after idle polls = %+v, want one snapshot", events)
	}

	_ = st.AppendMill(ctx, model.MillRecord{ID: "m", Date: "2024-02-01", Income: model.Shillings(900)})
	s.pollOnce(ctx)

	events := s.recentEvents()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	last := events[1]
	if last.Type != EventBooksChanged || last.Delta.MillEntries != 1 || last.Delta.MonthIncome != model.Shillings(900) {
		t.Errorf("change event = %+v", last)
	}
	if st := s.snapshotStatus(); st.PollCount != 3 || st.Summary.MonthIncome != model.Shillings(900) {
		t.Errorf("status = %+v", st)
	}
}

func TestSnapshotPreviousMonth(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()

	// Nothing recorded in January yet.
	if err := s.SnapshotPreviousMonth(ctx); err != nil {
		t.Fatal(err)
	}
	if got := st.MonthlySummaries(ctx); len(got) != 0 {
		t.Fatalf("summaries = %+v, want none for empty month", got)
	}

	_ = st.AppendMill(ctx, model.MillRecord{ID: "a", Date: "2024-01-10", Income: model.Shillings(1000)})
	_ = st.AppendMill(ctx, model.MillRecord{ID: "b", Date: "2024-01-20", Income: model.Shillings(1500)})
	if err := s.SnapshotPreviousMonth(ctx); err != nil {
		t.Fatal(err)
	}
	got := st.MonthlySummaries(ctx)
	if len(got) != 1 {
		t.Fatalf("summaries = %d, want 1", len(got))
	}
	if got[0].Month != "January" || got[0].Year != 2024 || got[0].RepairFund != model.Shillings(250) {
		t.Errorf("summary = %+v", got[0])
	}

	// Running again replaces rather than duplicates.
	if err := s.SnapshotPreviousMonth(ctx); err != nil {
		t.Fatal(err)
	}
	if n := len(st.MonthlySummaries(ctx)); n != 1 {
		t.Errorf("summaries after rerun = %d, want 1", n)
	}
	events := s.recentEvents()
	if events[len(events)-1].Type != EventSummarySaved {
		t.Errorf("last event = %+v, want summary_saved", events[len(events)-1])
	}
}

func TestSchedulerSpec(t *testing.T) {
	if _, err := NewScheduler("not a cron", func(context.Context) error { return nil }, nil); err == nil {
		t.Error("NewScheduler accepted an invalid spec")
	}
	sched, err := NewScheduler("", func(context.Context) error { return nil }, nil)
	if err != nil {
		t.Fatal(err)
	}
	if next := sched.Next(); next.IsZero() || next.Day() != 1 {
		t.Errorf("default schedule next = %v, want the 1st of a month", next)
	}
	off, err := NewScheduler("off", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !off.Next().IsZero() {
		t.Error("disabled scheduler has a next run")
	}
}
