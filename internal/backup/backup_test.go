package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/waniala/internal/model"
	"github.com/theirongolddev/waniala/internal/store"

	"go.uber.org/zap/zaptest"
)

func seeded(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(store.NewMemory(), zaptest.NewLogger(t))
	ctx := context.Background()
	_ = st.AppendMill(ctx, model.MillRecord{ID: "m1", Date: "2024-01-15", Income: model.Shillings(1000)})
	_ = st.AppendMill(ctx, model.MillRecord{ID: "m2", Date: "2024-01-16", Income: model.Shillings(500)})
	_ = st.SaveRental(ctx, model.RentalRecord{ID: "r1", RoomNumber: "A1", PaymentStatus: model.StatusPaid})
	_ = st.AddToRepairFund(ctx, model.Shillings(750))
	return st
}

func TestExportLayout(t *testing.T) {
	st := seeded(t)
	var buf bytes.Buffer
	sum, err := Export(context.Background(), st, &buf)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]string
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("backup is not a string map: %v", err)
	}
	if raw[store.KeyRepairFund] != "750" {
		t.Errorf("fund = %q, want 750", raw[store.KeyRepairFund])
	}
	if !strings.HasPrefix(raw[store.KeyMill], `[{"id":"m1"`) {
		t.Errorf("mill value = %q", raw[store.KeyMill])
	}
	if _, ok := raw[store.KeySummaries]; ok {
		t.Error("unwritten summaries key exported")
	}
	if sum.MillRecords != 2 || sum.Rentals != 1 || sum.RepairFund != model.Shillings(750) || len(sum.Keys) != 3 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestExportImportFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := seeded(t)
	path := filepath.Join(t.TempDir(), "nested", DefaultName(time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)))

	if _, err := ExportFile(ctx, src, path); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	dst := store.New(store.NewMemory(), zaptest.NewLogger(t))
	_ = dst.SaveMonthlySummary(ctx, model.MonthlySummary{Month: "December", Year: 2023})

	sum, err := ImportFile(ctx, dst, path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if sum.MillRecords != 2 {
		t.Errorf("imported mill = %d", sum.MillRecords)
	}
	if got := dst.MillRecords(ctx); len(got) != 2 || got[1].ID != "m2" {
		t.Errorf("mill after import = %+v", got)
	}
	// Keys missing from the backup are kept.
	if got := dst.MonthlySummaries(ctx); len(got) != 1 {
		t.Errorf("summaries after import = %+v", got)
	}
}

func TestImportAcceptsRawValues(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemory(), zaptest.NewLogger(t))
	in := `{
		"waniala_rentals": [{"id":"r","roomNumber":"B1","rentAmount":3000,"paymentStatus":"Pending"}],
		"waniala_repair_fund": 1200.5,
		"someone_elses_key": "ignored"
	}`
	if _, err := Import(ctx, st, strings.NewReader(in)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := st.RentalRecords(ctx); len(got) != 1 || got[0].RentAmount != model.Shillings(3000) {
		t.Errorf("rentals = %+v", got)
	}
	if got := st.RepairFund(ctx); got != 120050 {
		t.Errorf("fund = %d, want 120050", got)
	}
}

func TestImportKeepsMillTypeAcrossAppend(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemory(), zaptest.NewLogger(t))
	in := `{"waniala_posho_mill": "[{\"id\":\"old\",\"date\":\"2023-12-01\",\"income\":0,\"expenseDescription\":\"Maize\",\"expenseAmount\":800,\"electricity\":0,\"savings\":0,\"type\":\"expense\"}]"}`
	if _, err := Import(ctx, st, strings.NewReader(in)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := st.AppendMill(ctx, model.MillRecord{ID: "new", Date: "2024-01-02"}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := Export(ctx, st, &buf); err != nil {
		t.Fatal(err)
	}
	var dump map[string]string
	if err := json.Unmarshal(buf.Bytes(), &dump); err != nil {
		t.Fatal(err)
	}
	mill := dump[store.KeyMill]
	if !strings.Contains(mill, `"type":"expense"`) {
		t.Errorf("type field lost after append: %s", mill)
	}
	if strings.Count(mill, `"type"`) != 1 {
		t.Errorf("type written for records that had none: %s", mill)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	st := seeded(t)
	for _, in := range []string{
		`not json`,
		`{"waniala_posho_mill": "[{broken"}`,
		`{"waniala_repair_fund": "lots"}`,
	} {
		if _, err := Import(ctx, st, strings.NewReader(in)); err == nil {
			t.Errorf("Import(%q) succeeded", in)
		}
	}
	if n := len(st.MillRecords(ctx)); n != 2 {
		t.Errorf("mill records changed after failed import: %d", n)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, FilePrefix+"2024-01-01-000000.json")
	newer := filepath.Join(dir, FilePrefix+"2024-02-01-000000.json")
	for _, p := range []string{older, newer, filepath.Join(dir, "notes.txt")} {
		if err := os.WriteFile(p, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	_ = os.Chtimes(older, past, past)

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Path != newer {
		t.Errorf("files = %+v", files)
	}

	missing, err := ScanDir(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Errorf("missing dir = %v, %v", missing, err)
	}
}
