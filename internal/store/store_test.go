package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/waniala/internal/model"

	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) (*Store, *Memory) {
	t.Helper()
	mem := NewMemory()
	return New(mem, zaptest.NewLogger(t)), mem
}

func TestEmptyStoreReadsDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if got := s.MillRecords(ctx); got == nil || len(got) != 0 {
		t.Errorf("MillRecords = %#v, want empty non-nil", got)
	}
	if got := s.RentalRecords(ctx); got == nil || len(got) != 0 {
		t.Errorf("RentalRecords = %#v, want empty non-nil", got)
	}
	if got := s.MonthlySummaries(ctx); got == nil || len(got) != 0 {
		t.Errorf("MonthlySummaries = %#v, want empty non-nil", got)
	}
	if got := s.RepairFund(ctx); got != 0 {
		t.Errorf("RepairFund = %d, want 0", got)
	}
}

func TestAppendMill(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	r := model.MillRecord{ID: "m1", Date: "2024-01-15", Income: model.Shillings(1000)}
	if err := s.AppendMill(ctx, r); err != nil {
		t.Fatalf("AppendMill: %v", err)
	}
	got := s.MillRecords(ctx)
	if len(got) != 1 || got[0] != r {
		t.Fatalf("MillRecords = %+v, want [%+v]", got, r)
	}

	// Duplicate ids are not rejected.
	if err := s.AppendMill(ctx, r); err != nil {
		t.Fatalf("AppendMill: %v", err)
	}
	if n := len(s.MillRecords(ctx)); n != 2 {
		t.Errorf("len = %d after duplicate append, want 2", n)
	}
}

func TestSaveRentalUpsert(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a := model.RentalRecord{ID: "r1", RoomNumber: "A1", RentAmount: model.Shillings(5000), PaymentStatus: model.StatusPending}
	b := model.RentalRecord{ID: "r2", RoomNumber: "A2", RentAmount: model.Shillings(3000), PaymentStatus: model.StatusPending}
	for _, r := range []model.RentalRecord{a, b} {
		if err := s.SaveRental(ctx, r); err != nil {
			t.Fatalf("SaveRental: %v", err)
		}
	}

	a.PaymentStatus = model.StatusPaid
	a.DatePaid = "2024-01-05"
	if err := s.SaveRental(ctx, a); err != nil {
		t.Fatalf("SaveRental: %v", err)
	}

	got := s.RentalRecords(ctx)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != a {
		t.Errorf("got[0] = %+v, want updated %+v in place", got[0], a)
	}
	if got[1] != b {
		t.Errorf("got[1] = %+v, want %+v", got[1], b)
	}
}

func TestSaveRentalFirstMatchOnly(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	dup := `[{"id":"x","roomNumber":"1","rentAmount":100},{"id":"x","roomNumber":"2","rentAmount":200}]`
	_ = mem.Put(ctx, KeyRentals, []byte(dup))

	if err := s.SaveRental(ctx, model.RentalRecord{ID: "x", RoomNumber: "9"}); err != nil {
		t.Fatal(err)
	}
	got := s.RentalRecords(ctx)
	if got[0].RoomNumber != "9" || got[1].RoomNumber != "2" {
		t.Errorf("rooms = %q,%q; want 9,2", got[0].RoomNumber, got[1].RoomNumber)
	}
}

func TestDeleteRental(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	_ = mem.Put(ctx, KeyRentals, []byte(`[{"id":"x"},{"id":"y"},{"id":"x"}]`))

	if err := s.DeleteRental(ctx, "missing"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.RentalRecords(ctx)); n != 3 {
		t.Errorf("len after deleting unknown id = %d, want 3", n)
	}

	if err := s.DeleteRental(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	got := s.RentalRecords(ctx)
	if len(got) != 1 || got[0].ID != "y" {
		t.Errorf("after delete = %+v, want only y", got)
	}
}

func TestRepairFund(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	if err := s.AddToRepairFund(ctx, model.Shillings(1500)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddToRepairFund(ctx, 2550); err != nil {
		t.Fatal(err)
	}
	if got, want := s.RepairFund(ctx), model.Money(152550); got != want {
		t.Errorf("RepairFund = %d, want %d", got, want)
	}
	raw, _ := mem.Get(ctx, KeyRepairFund)
	if string(raw) != "1525.5" {
		t.Errorf("stored fund = %q, want 1525.5", raw)
	}

	_ = mem.Put(ctx, KeyRepairFund, []byte("not-a-number"))
	if got := s.RepairFund(ctx); got != 0 {
		t.Errorf("malformed fund = %d, want 0", got)
	}
}

func TestSaveMonthlySummaryUpsert(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	jan := model.MonthlySummary{Month: "January", Year: 2024, TotalIncome: 100}
	feb := model.MonthlySummary{Month: "February", Year: 2024, TotalIncome: 200}
	jan25 := model.MonthlySummary{Month: "January", Year: 2025, TotalIncome: 300}
	for _, sum := range []model.MonthlySummary{jan, feb, jan25} {
		if err := s.SaveMonthlySummary(ctx, sum); err != nil {
			t.Fatal(err)
		}
	}
	jan.TotalIncome = 999
	if err := s.SaveMonthlySummary(ctx, jan); err != nil {
		t.Fatal(err)
	}

	got := s.MonthlySummaries(ctx)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].TotalIncome != 999 {
		t.Errorf("January 2024 income = %d, want 999", got[0].TotalIncome)
	}
	if got[2].TotalIncome != 300 {
		t.Errorf("January 2025 income = %d, want 300 (untouched)", got[2].TotalIncome)
	}
}

func TestMalformedCollectionReadsEmpty(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	_ = mem.Put(ctx, KeyMill, []byte("{broken"))
	if got := s.MillRecords(ctx); len(got) != 0 {
		t.Errorf("MillRecords = %+v, want empty", got)
	}
	_ = mem.Put(ctx, KeyMill, []byte("null"))
	if got := s.MillRecords(ctx); got == nil {
		t.Error("MillRecords returned nil for null value")
	}
}

func TestUnavailableBackend(t *testing.T) {
	s := New(Unavailable{}, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.AppendMill(ctx, model.MillRecord{ID: "a"}); err != nil {
		t.Errorf("AppendMill on unavailable = %v, want nil", err)
	}
	if err := s.AddToRepairFund(ctx, 100); err != nil {
		t.Errorf("AddToRepairFund on unavailable = %v, want nil", err)
	}
	if got := s.MillRecords(ctx); len(got) != 0 {
		t.Errorf("MillRecords = %+v, want empty", got)
	}
	if got := s.RepairFund(ctx); got != 0 {
		t.Errorf("RepairFund = %d, want 0", got)
	}
}

type failingBackend struct{ *Memory }

func (failingBackend) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func TestWriteErrorsPropagate(t *testing.T) {
	s := New(failingBackend{NewMemory()}, zaptest.NewLogger(t))
	err := s.AppendMill(context.Background(), model.MillRecord{ID: "a"})
	if err == nil {
		t.Fatal("AppendMill succeeded on failing backend")
	}
}

// lockedBackend fails reads while locked, like SQLite under a competing writer.
type lockedBackend struct {
	*Memory
	locked bool
}

func (b *lockedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if b.locked {
		return nil, errors.New("database is locked")
	}
	return b.Memory.Get(ctx, key)
}

func TestWriteAfterFailedReadKeepsHistory(t *testing.T) {
	b := &lockedBackend{Memory: NewMemory()}
	s := New(b, zaptest.NewLogger(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.AppendMill(ctx, model.MillRecord{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.SaveRental(ctx, model.RentalRecord{ID: "r1", RoomNumber: "A1"})
	_ = s.SaveMonthlySummary(ctx, model.MonthlySummary{Month: "January", Year: 2024})
	_ = s.AddToRepairFund(ctx, 5000)

	b.locked = true
	if err := s.AppendMill(ctx, model.MillRecord{ID: "d"}); err == nil {
		t.Error("AppendMill succeeded after a failed read")
	}
	if err := s.SaveRental(ctx, model.RentalRecord{ID: "r2"}); err == nil {
		t.Error("SaveRental succeeded after a failed read")
	}
	if err := s.DeleteRental(ctx, "r1"); err == nil {
		t.Error("DeleteRental succeeded after a failed read")
	}
	if err := s.SaveMonthlySummary(ctx, model.MonthlySummary{Month: "February", Year: 2024}); err == nil {
		t.Error("SaveMonthlySummary succeeded after a failed read")
	}
	if err := s.AddToRepairFund(ctx, 100); err == nil {
		t.Error("AddToRepairFund succeeded after a failed read")
	}
	// Plain reads still fall back to defaults.
	if got := s.MillRecords(ctx); len(got) != 0 {
		t.Errorf("MillRecords while locked = %d, want empty", len(got))
	}

	b.locked = false
	if got := s.MillRecords(ctx); len(got) != 3 {
		t.Errorf("mill records after failed write = %d, want 3", len(got))
	}
	if got := s.RentalRecords(ctx); len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("rentals after failed writes = %+v", got)
	}
	if got := s.MonthlySummaries(ctx); len(got) != 1 {
		t.Errorf("summaries after failed write = %d, want 1", len(got))
	}
	if got := s.RepairFund(ctx); got != 5000 {
		t.Errorf("RepairFund after failed write = %d, want 5000", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	src, _ := newTestStore(t)
	ctx := context.Background()

	_ = src.AppendMill(ctx, model.MillRecord{ID: "m1", Date: "2024-01-01", Income: 100})
	_ = src.SaveRental(ctx, model.RentalRecord{ID: "r1", RoomNumber: "A1"})
	_ = src.AddToRepairFund(ctx, 5000)

	snap := src.Snapshot(ctx)
	if len(snap) != 3 {
		t.Fatalf("snapshot has %d keys, want 3 (summaries absent)", len(snap))
	}

	dst, _ := newTestStore(t)
	if err := dst.Restore(ctx, snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := dst.MillRecords(ctx); len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("restored mill = %+v", got)
	}
	if got := dst.RepairFund(ctx); got != 5000 {
		t.Errorf("restored fund = %d, want 5000", got)
	}

	bad := Snapshot{KeyRentals: "[oops"}
	if err := dst.Restore(ctx, bad); err == nil {
		t.Error("Restore accepted malformed rentals")
	}
	if got := dst.RentalRecords(ctx); len(got) != 1 {
		t.Errorf("rentals changed after rejected restore: %+v", got)
	}
}

func TestSQLiteBackend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "waniala.db")
	b, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = b.Close() }()
	ctx := context.Background()

	if _, err := b.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}
	if err := b.Put(ctx, "k", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := b.Put(ctx, "k", []byte("two")); err != nil {
		t.Fatal(err)
	}
	got, err := b.Get(ctx, "k")
	if err != nil || string(got) != "two" {
		t.Fatalf("Get = %q, %v; want two", got, err)
	}

	// Reopening runs migrations again without error.
	_ = b.Close()
	b2, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = b2.Close() }()
	if got, _ := b2.Get(ctx, "k"); string(got) != "two" {
		t.Errorf("after reopen Get = %q, want two", got)
	}
}

func TestFileBackend(t *testing.T) {
	b, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := b.Get(ctx, KeyMill); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing = %v, want ErrNotFound", err)
	}
	if err := b.Put(ctx, KeyMill, []byte("[]")); err != nil {
		t.Fatal(err)
	}
	got, err := b.Get(ctx, KeyMill)
	if err != nil || string(got) != "[]" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := b.Put(ctx, "../escape", []byte("x")); err == nil {
		t.Error("Put accepted a key with a path separator")
	}
}

func TestOpenKinds(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, kind := range []string{KindMemory, KindUnavailable, KindFile, KindSQLite} {
		b, err := Open(ctx, Options{Kind: kind, SQLitePath: filepath.Join(dir, "w.db"), FileDir: filepath.Join(dir, "files")})
		if err != nil {
			t.Errorf("Open(%s): %v", kind, err)
			continue
		}
		_ = b.Close()
	}
	if _, err := Open(ctx, Options{Kind: "redis"}); err == nil {
		t.Error("Open accepted unknown kind")
	}
	if _, err := Open(ctx, Options{Kind: KindMongo}); err == nil {
		t.Error("Open(mongo) without uri should fail")
	}
}
