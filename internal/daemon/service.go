// Package daemon provides the long-running background bookkeeping service:
// it polls the store for changes, serves the HTTP API and snapshots
// monthly summaries on a schedule.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/pipeline"
	"github.com/theirongolddev/waniala/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Backend      string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	SummaryCron  string
}

// Snapshot is a compact state of the books for status/event payloads.
type Snapshot struct {
	At                  time.Time   `json:"at"`
	Month               time.Month  `json:"month"`
	Year                int         `json:"year"`
	MillEntries         int         `json:"mill_entries"`
	Rooms               int         `json:"rooms"`
	Summaries           int         `json:"summaries"`
	MonthIncome         model.Money `json:"month_income"`
	MonthExpenses       model.Money `json:"month_expenses"`
	MonthSavings        model.Money `json:"month_savings"`
	MonthNetBalance     model.Money `json:"month_net_balance"`
	SuggestedRepairFund model.Money `json:"suggested_repair_fund"`
	RentExpected        model.Money `json:"rent_expected"`
	RentCollected       model.Money `json:"rent_collected"`
	RentPending         model.Money `json:"rent_pending"`
	StoredRepairFund    model.Money `json:"stored_repair_fund"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	MillEntries      int         `json:"mill_entries"`
	Rooms            int         `json:"rooms"`
	Summaries        int         `json:"summaries"`
	MonthIncome      model.Money `json:"month_income"`
	MonthExpenses    model.Money `json:"month_expenses"`
	RentExpected     model.Money `json:"rent_expected"`
	RentCollected    model.Money `json:"rent_collected"`
	StoredRepairFund model.Money `json:"stored_repair_fund"`
}

func (d Delta) isZero() bool {
	return d == Delta{}
}

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventBooksChanged = "books_changed"
	EventSummarySaved = "summary_saved"
)

// Event is emitted whenever the books change.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Message   string    `json:"message,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Backend         string    `json:"backend"`
	SummaryCron     string    `json:"summary_cron,omitempty"`
	LastSummaryAt   time.Time `json:"last_summary_at,omitzero"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	store *store.Store
	log   *zap.Logger
	now   func() time.Time

	mu            sync.RWMutex
	startedAt     time.Time
	lastPollAt    time.Time
	lastSummaryAt time.Time
	pollCount     int64
	lastError     string
	hasSnapshot   bool
	snapshot      Snapshot
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service over st.
func New(cfg Config, st *store.Store, logger *zap.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		log:       logger,
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves the HTTP API, polls the store and runs the summary schedule
// until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sched, err := NewScheduler(s.cfg.SummaryCron, s.SnapshotPreviousMonth, s.log.Named("scheduler"))
	if err != nil {
		return err
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sched.Start()
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(gctx)
			}
		}
	})

	s.log.Info("daemon started",
		zap.String("addr", s.cfg.Addr),
		zap.Duration("interval", s.cfg.Interval),
		zap.String("backend", s.cfg.Backend))

	return g.Wait()
}

func (s *Service) pollOnce(ctx context.Context) {
	books, err := pipeline.LoadAll(ctx, s.store, nil)
	now := s.now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", zap.Error(err))
		return
	}

	snap := snapshotFromBooks(books, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		ev = Event{Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		ev = Event{Type: EventBooksChanged, Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromBooks(books *pipeline.LoadResult, at time.Time) Snapshot {
	d := pipeline.Dashboard(books.Mill, books.Rentals, books.RepairFund, at)
	return Snapshot{
		At:                  at,
		Month:               d.Month,
		Year:                d.Year,
		MillEntries:         len(books.Mill),
		Rooms:               d.Rentals.Rooms,
		Summaries:           len(books.Summaries),
		MonthIncome:         d.Mill.TotalIncome,
		MonthExpenses:       d.Mill.TotalExpenses,
		MonthSavings:        d.Mill.TotalSavings,
		MonthNetBalance:     d.Mill.NetBalance,
		SuggestedRepairFund: d.Mill.RepairFund,
		RentExpected:        d.Rentals.TotalExpected,
		RentCollected:       d.Rentals.TotalCollected,
		RentPending:         d.Rentals.Pending,
		StoredRepairFund:    d.StoredFund,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		MillEntries:      curr.MillEntries - prev.MillEntries,
		Rooms:            curr.Rooms - prev.Rooms,
		Summaries:        curr.Summaries - prev.Summaries,
		MonthIncome:      curr.MonthIncome - prev.MonthIncome,
		MonthExpenses:    curr.MonthExpenses - prev.MonthExpenses,
		RentExpected:     curr.RentExpected - prev.RentExpected,
		RentCollected:    curr.RentCollected - prev.RentCollected,
		StoredRepairFund: curr.StoredRepairFund - prev.StoredRepairFund,
	}
}

// SnapshotPreviousMonth saves the monthly summary for the month before now.
// Months without mill records are skipped.
func (s *Service) SnapshotPreviousMonth(ctx context.Context) error {
	month, year := pipeline.PreviousMonth(s.now())
	records := s.store.MillRecords(ctx)
	if len(pipeline.FilterMillByMonth(records, month, year)) == 0 {
		s.log.Info("no mill records, skipping summary", zap.Stringer("month", month), zap.Int("year", year))
		return nil
	}

	sum := pipeline.SummaryFor(records, month, year)
	if err := s.store.SaveMonthlySummary(ctx, sum); err != nil {
		return fmt.Errorf("saving %s %d summary: %w", month, year, err)
	}

	s.mu.Lock()
	s.lastSummaryAt = s.now()
	snap := s.snapshot
	s.mu.Unlock()

	s.publishEvent(Event{
		Type:      EventSummarySaved,
		Timestamp: s.now(),
		Snapshot:  snap,
		Message:   fmt.Sprintf("%s %d", month, year),
	})
	s.log.Info("monthly summary saved", zap.Stringer("month", month), zap.Int("year", year))
	return nil
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Backend:         s.cfg.Backend,
		SummaryCron:     s.cfg.SummaryCron,
		LastSummaryAt:   s.lastSummaryAt,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) recentEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
