package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/theirongolddev/waniala/internal/model"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s, _ := newTestService(t)
	w := doJSON(t, s.Router(), http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", w.Code, w.Body.String())
	}
}

func TestAddAndListMill(t *testing.T) {
	s, st := newTestService(t)
	h := s.Router()

	w := doJSON(t, h, http.MethodPost, "/v1/mill", map[string]any{
		"date": "2024-01-15", "income": 1000, "expenseAmount": "200", "electricity": 50, "savings": 100,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /v1/mill = %d %s", w.Code, w.Body.String())
	}
	// Missing date defaults to today.
	if w := doJSON(t, h, http.MethodPost, "/v1/mill", map[string]any{"income": 10}); w.Code != http.StatusCreated {
		t.Fatalf("POST without date = %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodPost, "/v1/mill", map[string]any{"date": "yesterday"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad date = %d, want 400", w.Code)
	}

	records := st.MillRecords(context.Background())
	if len(records) != 2 || records[0].ExpenseAmount != model.Shillings(200) || records[1].Date != "2024-02-01" {
		t.Fatalf("stored = %+v", records)
	}

	w = doJSON(t, h, http.MethodGet, "/v1/mill?date=2024-01-15", nil)
	var got []model.MillRecord
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Income != model.Shillings(1000) {
		t.Errorf("GET /v1/mill = %+v", got)
	}
}

func TestRentalLifecycle(t *testing.T) {
	s, st := newTestService(t)
	h := s.Router()
	ctx := context.Background()

	w := doJSON(t, h, http.MethodPut, "/v1/rentals/r1", map[string]any{
		"roomNumber": "A1", "tenantName": "Jane", "rentAmount": 5000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT = %d %s", w.Code, w.Body.String())
	}
	if r, _ := st.RentalByID(ctx, "r1"); r.PaymentStatus != model.StatusPending {
		t.Errorf("new rental status = %q, want Pending", r.PaymentStatus)
	}

	if w := doJSON(t, h, http.MethodPut, "/v1/rentals/r2", map[string]any{"roomNumber": "A2", "paymentStatus": "Late"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/v1/rentals/r1/toggle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d", w.Code)
	}
	r, _ := st.RentalByID(ctx, "r1")
	if r.PaymentStatus != model.StatusPaid || r.DatePaid != "2024-02-01" {
		t.Errorf("after toggle = %+v", r)
	}

	if w := doJSON(t, h, http.MethodPost, "/v1/rentals/nope/toggle", nil); w.Code != http.StatusNotFound {
		t.Errorf("toggle missing = %d, want 404", w.Code)
	}

	if w := doJSON(t, h, http.MethodDelete, "/v1/rentals/r1", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	if n := len(st.RentalRecords(ctx)); n != 0 {
		t.Errorf("rentals after delete = %d", n)
	}
}

func TestFundEndpoints(t *testing.T) {
	s, _ := newTestService(t)
	h := s.Router()

	if w := doJSON(t, h, http.MethodPost, "/v1/fund", map[string]any{"amount": 0}); w.Code != http.StatusBadRequest {
		t.Errorf("zero amount = %d, want 400", w.Code)
	}
	w := doJSON(t, h, http.MethodPost, "/v1/fund", map[string]any{"amount": 1234.5})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /v1/fund = %d", w.Code)
	}
	w = doJSON(t, h, http.MethodGet, "/v1/fund", nil)
	var body struct {
		RepairFund model.Money `json:"repairFund"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.RepairFund != 123450 {
		t.Errorf("fund = %d, want 123450", body.RepairFund)
	}
}

func TestSummariesAndTotals(t *testing.T) {
	s, st := newTestService(t)
	h := s.Router()
	ctx := context.Background()

	_ = st.AppendMill(ctx, model.MillRecord{ID: "a", Date: "2024-01-01", Income: model.Shillings(1000)})
	_ = st.AppendMill(ctx, model.MillRecord{ID: "b", Date: "2024-01-02", Income: model.Shillings(1500), ExpenseDescription: "Maize", ExpenseAmount: model.Shillings(400)})

	w := doJSON(t, h, http.MethodPut, "/v1/summaries?month=1&year=2024", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /v1/summaries = %d %s", w.Code, w.Body.String())
	}
	if got := st.MonthlySummaries(ctx); len(got) != 1 || got[0].TotalIncome != model.Shillings(2500) {
		t.Errorf("summaries = %+v", got)
	}

	w = doJSON(t, h, http.MethodGet, "/v1/totals?month=january&year=2024", nil)
	var totals totalsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &totals); err != nil {
		t.Fatal(err)
	}
	if totals.Monthly.RepairFund != model.Shillings(250) || len(totals.Days) != 31 || len(totals.Expenses) != 1 {
		t.Errorf("totals = %+v", totals.Monthly)
	}

	if w := doJSON(t, h, http.MethodGet, "/v1/totals?month=13", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad month = %d, want 400", w.Code)
	}
}

func TestStatusAndEvents(t *testing.T) {
	s, _ := newTestService(t)
	s.pollOnce(context.Background())
	h := s.Router()

	w := doJSON(t, h, http.MethodGet, "/v1/status", nil)
	var st Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Backend != "memory" || st.PollCount != 1 {
		t.Errorf("status = %+v", st)
	}

	w = doJSON(t, h, http.MethodGet, "/v1/events", nil)
	var events []Event
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != EventSnapshot {
		t.Errorf("events = %+v", events)
	}
}
