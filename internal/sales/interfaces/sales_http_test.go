package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kunafa-ledger/internal/audit"
	"kunafa-ledger/internal/sales/application"
	"kunafa-ledger/internal/sales/infrastructure/memory"
	"kunafa-ledger/internal/sales/locale"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) Log(_ context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

func newTestHandler(t *testing.T) (*SalesHandler, *application.Ledger, *recordingAudit) {
	t.Helper()
	ledger, err := application.NewLedger(memory.NewSlot(), nil)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	importer, err := application.NewImporter(ledger, XLSXReader{}, locale.French)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	auditLog := &recordingAudit{}
	handler, err := NewSalesHandler(ledger, importer, Settings{
		Locale:      locale.French,
		PageSize:    2,
		ProductName: "Sultan Kunafa",
	}, auditLog, log.New(&bytes.Buffer{}, "", 0), WithClock(fixedClock(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, ledger, auditLog
}

func do(h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestSalesHandler_AddListDelete(t *testing.T) {
	handler, ledger, auditLog := newTestHandler(t)

	resp := do(handler, http.MethodPost, "/api/v1/sales", `{"date":"2025-03-09","amount":"12,5","type":"kunafa","note":" four "}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID        string `json:"id"`
		Date      string `json:"date"`
		DateLabel string `json:"date_label"`
		Amount    string `json:"amount"`
		Note      string `json:"note"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Date != "2025-03-09" || created.Amount != "12.5" || created.Note != "four" || created.DateLabel != "dim. 9 mars 2025" {
		t.Fatalf("unexpected created sale %+v", created)
	}

	for _, body := range []string{`{"amount":3}`, `{"date":"01/03/2025","amount":4.25}`} {
		if resp := do(handler, http.MethodPost, "/api/v1/sales", body); resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 for %s, got %d", body, resp.Code)
		}
	}

	resp = do(handler, http.MethodGet, "/api/v1/sales?period=month", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list struct {
		Items     []map[string]any `json:"items"`
		Count     int              `json:"count"`
		Total     string           `json:"total"`
		Label     string           `json:"label"`
		Remaining int              `json:"remaining"`
		HasMore   bool             `json:"has_more"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 3 || len(list.Items) != 2 || list.Remaining != 1 || !list.HasMore || list.Total != "19.75" || list.Label != "Mois en cours" {
		t.Fatalf("unexpected list %+v", list)
	}

	resp = do(handler, http.MethodDelete, "/api/v1/sales/"+created.ID, "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp := do(handler, http.MethodDelete, "/api/v1/sales/"+created.ID, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.Code)
	}
	if got := len(ledger.GetAll(context.Background())); got != 2 {
		t.Fatalf("expected 2 sales left, got %d", got)
	}
	actions := strings.Join(auditLog.actions(), ",")
	if actions != "sale.add,sale.add,sale.add,sale.delete" {
		t.Fatalf("unexpected audit trail %q", actions)
	}
}

func TestSalesHandler_RejectsInvalidInput(t *testing.T) {
	handler, ledger, _ := newTestHandler(t)
	cases := []string{
		`{"amount":"-3"}`,
		`{"amount":"abc"}`,
		`{}`,
		`{"amount":3,"type":"cake"}`,
		`{"amount":3,"date":"31/02/2025"}`,
		`not json`,
	}
	for _, body := range cases {
		if resp := do(handler, http.MethodPost, "/api/v1/sales", body); resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, resp.Code)
		}
	}
	if got := len(ledger.GetAll(context.Background())); got != 0 {
		t.Fatalf("invalid input must not be stored, got %d sales", got)
	}
	if resp := do(handler, http.MethodGet, "/api/v1/sales?period=year", ""); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", resp.Code)
	}
	if resp := do(handler, http.MethodGet, "/api/v1/sales?pages=0", ""); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad pages, got %d", resp.Code)
	}
}

func TestSalesHandler_ExportAndImport(t *testing.T) {
	handler, ledger, auditLog := newTestHandler(t)
	for _, body := range []string{`{"date":"2025-03-09","amount":10,"type":"flan"}`, `{"date":"2025-03-01","amount":"2.5"}`} {
		if resp := do(handler, http.MethodPost, "/api/v1/sales", body); resp.Code != http.StatusCreated {
			t.Fatalf("seed: %d", resp.Code)
		}
	}

	resp := do(handler, http.MethodGet, "/api/v1/sales/export.xlsx?period=month", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="Sultan-Kunafa-Ventes-2025-03-10.xlsx"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	workbook := resp.Body.Bytes()

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", "ventes.xlsx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write(workbook)
	_ = writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/import", &form)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result application.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 2 {
		t.Fatalf("re-importing own export should skip everything, got %+v", result)
	}
	if got := len(ledger.GetAll(context.Background())); got != 2 {
		t.Fatalf("expected 2 sales, got %d", got)
	}

	resp = do(handler, http.MethodPost, "/api/v1/sales/import", "garbage")
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "invalid file") {
		t.Fatalf("expected invalid file, got %d %q", resp.Code, resp.Body.String())
	}

	resp = do(handler, http.MethodGet, "/api/v1/sales/export.pdf", "")
	if resp.Code != http.StatusOK || !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected pdf, got %d", resp.Code)
	}
	if resp := do(handler, http.MethodGet, "/api/v1/sales/export.pdf?locale=ar", ""); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for arabic pdf without font, got %d", resp.Code)
	}

	actions := strings.Join(auditLog.actions(), ",")
	if !strings.HasSuffix(actions, "sale.export,sale.import,sale.export") {
		t.Fatalf("unexpected audit trail %q", actions)
	}
}

func TestSalesHandler_Stats(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	_ = do(handler, http.MethodPost, "/api/v1/sales", `{"date":"2025-03-09","amount":10}`)
	resp := do(handler, http.MethodGet, "/api/v1/sales/stats", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"Hier"`) || !strings.Contains(body, `"2025-03"`) {
		t.Fatalf("unexpected stats %s", body)
	}
}

func TestSalesHandler_NotFound(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	for _, target := range []string{"/api/v1/sales/unknown/extra", "/api/v1/other"} {
		if resp := do(handler, http.MethodDelete, target, ""); resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", target, resp.Code)
		}
	}
}

type unreadableSlot struct{}

func (unreadableSlot) Read(context.Context) ([]byte, error) { return nil, errors.New("connection refused") }
func (unreadableSlot) Write(context.Context, []byte) error  { return errors.New("write not expected") }

func TestSalesHandler_AddWithUnreadableStorage(t *testing.T) {
	ledger, err := application.NewLedger(unreadableSlot{}, nil)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	importer, err := application.NewImporter(ledger, XLSXReader{}, locale.French)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	handler, err := NewSalesHandler(ledger, importer, Settings{}, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := do(handler, http.MethodPost, "/api/v1/sales", `{"date":"2025-03-09","amount":5}`)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", resp.Code, resp.Body.String())
	}
}
