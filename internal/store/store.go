package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/theirongolddev/waniala/internal/model"

	"go.uber.org/zap"
)

// Storage keys. The values are compatible with a browser localStorage dump.
const (
	KeyMill       = "waniala_posho_mill"
	KeyRentals    = "waniala_rentals"
	KeyRepairFund = "waniala_repair_fund"
	KeySummaries  = "waniala_monthly_summaries"
)

// Keys returns every storage key.
func Keys() []string {
	return []string{KeyMill, KeyRentals, KeyRepairFund, KeySummaries}
}

// Store reads and writes the four bookkeeping collections. Reads never fail:
// a missing, unavailable or malformed value yields the empty default.
type Store struct {
	backend Backend
	log     *zap.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// New wraps backend. A nil logger discards log output.
func New(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, log: logger}
}

// Close closes the backend.
func (s *Store) Close() error { return s.backend.Close() }

// MillRecords returns every mill record in insertion order.
func (s *Store) MillRecords(ctx context.Context) []model.MillRecord {
	return readList[model.MillRecord](ctx, s, KeyMill)
}

// AppendMill adds r to the end of the mill collection. Ids are not checked
// for duplicates.
func (s *Store) AppendMill(ctx context.Context, r model.MillRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadList[model.MillRecord](ctx, s, KeyMill)
	if err != nil {
		return err
	}
	records = append(records, r)
	return s.writeJSON(ctx, KeyMill, records)
}

// RentalRecords returns every rental record in insertion order.
func (s *Store) RentalRecords(ctx context.Context) []model.RentalRecord {
	return readList[model.RentalRecord](ctx, s, KeyRentals)
}

// SaveRental replaces the first record with r's id, or appends r.
func (s *Store) SaveRental(ctx context.Context, r model.RentalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadList[model.RentalRecord](ctx, s, KeyRentals)
	if err != nil {
		return err
	}
	replaced := false
	for i := range records {
		if records[i].ID == r.ID {
			records[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, r)
	}
	return s.writeJSON(ctx, KeyRentals, records)
}

// DeleteRental removes every record with the given id.
func (s *Store) DeleteRental(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := loadList[model.RentalRecord](ctx, s, KeyRentals)
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return s.writeJSON(ctx, KeyRentals, kept)
}

// RentalByID returns the first rental record with id.
func (s *Store) RentalByID(ctx context.Context, id string) (model.RentalRecord, bool) {
	for _, r := range s.RentalRecords(ctx) {
		if r.ID == id {
			return r, true
		}
	}
	return model.RentalRecord{}, false
}

// RepairFund returns the stored repair fund balance.
func (s *Store) RepairFund(ctx context.Context) model.Money {
	data, ok := s.get(ctx, KeyRepairFund)
	return s.decodeFund(data, ok)
}

func (s *Store) decodeFund(data []byte, ok bool) model.Money {
	if !ok {
		return 0
	}
	m, err := model.ParseMoney(string(data))
	if err != nil {
		s.log.Warn("ignoring malformed repair fund", zap.String("value", string(data)))
		return 0
	}
	return m
}

// AddToRepairFund adds amount to the stored balance. Negative amounts
// withdraw.
func (s *Store) AddToRepairFund(ctx context.Context, amount model.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.load(ctx, KeyRepairFund)
	if err != nil {
		return err
	}
	next := s.decodeFund(data, ok) + amount
	return s.put(ctx, KeyRepairFund, []byte(next.Decimal()))
}

// MonthlySummaries returns every cached monthly summary.
func (s *Store) MonthlySummaries(ctx context.Context) []model.MonthlySummary {
	return readList[model.MonthlySummary](ctx, s, KeySummaries)
}

// SaveMonthlySummary replaces the summary for the same month and year, or
// appends it.
func (s *Store) SaveMonthlySummary(ctx context.Context, sum model.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := loadList[model.MonthlySummary](ctx, s, KeySummaries)
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].Month == sum.Month && list[i].Year == sum.Year {
			list[i] = sum
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, sum)
	}
	return s.writeJSON(ctx, KeySummaries, list)
}

// Snapshot maps storage keys to their raw stored values. Absent keys are
// omitted.
type Snapshot map[string]string

// Snapshot reads the raw value of every key.
func (s *Store) Snapshot(ctx context.Context) Snapshot {
	snap := make(Snapshot, 4)
	for _, key := range Keys() {
		if data, ok := s.get(ctx, key); ok {
			snap[key] = string(data)
		}
	}
	return snap
}

// Restore writes every known key present in snap, replacing stored values.
// Values are validated first so a bad snapshot writes nothing.
func (s *Store) Restore(ctx context.Context, snap Snapshot) error {
	if err := ValidateSnapshot(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(snap))
	for k := range snap {
		if isKnownKey(k) {
			keys = append(keys, k)
		} else {
			s.log.Warn("skipping unknown key in snapshot", zap.String("key", k))
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.put(ctx, k, []byte(snap[k])); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSnapshot checks that every known key in snap decodes.
func ValidateSnapshot(snap Snapshot) error {
	for k, v := range snap {
		var err error
		switch k {
		case KeyMill:
			var list []model.MillRecord
			err = json.Unmarshal([]byte(v), &list)
		case KeyRentals:
			var list []model.RentalRecord
			err = json.Unmarshal([]byte(v), &list)
		case KeySummaries:
			var list []model.MonthlySummary
			err = json.Unmarshal([]byte(v), &list)
		case KeyRepairFund:
			_, err = model.ParseMoney(v)
		}
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", k, err)
		}
	}
	return nil
}

func isKnownKey(k string) bool {
	for _, known := range Keys() {
		if k == known {
			return true
		}
	}
	return false
}

// get returns the raw value for key, logging anything other than a plain miss.
func (s *Store) get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		return data, true
	case errors.Is(err, ErrNotFound):
	case errors.Is(err, ErrUnavailable):
		s.log.Debug("storage unavailable, using defaults", zap.String("key", key))
	default:
		s.log.Warn("read failed, using defaults", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

// load is get for read-modify-write cycles: a backend failure other than a
// miss is returned so the write never replaces data it could not read.
func (s *Store) load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		return data, true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnavailable):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
}

func (s *Store) put(ctx context.Context, key string, value []byte) error {
	if err := s.backend.Put(ctx, key, value); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil
		}
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.put(ctx, key, data)
}

// readList decodes the JSON array under key. The result is never nil.
func readList[T any](ctx context.Context, s *Store, key string) []T {
	data, ok := s.get(ctx, key)
	return decodeList[T](s, key, data, ok)
}

// loadList is readList for writers. Malformed values still decode as
// empty; backend failures are returned.
func loadList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	data, ok, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeList[T](s, key, data, ok), nil
}

func decodeList[T any](s *Store, key string, data []byte, ok bool) []T {
	if !ok {
		return []T{}
	}
	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		s.log.Warn("ignoring malformed collection", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	if list == nil {
		list = []T{}
	}
	return list
}
