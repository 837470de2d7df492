package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kunafa-ledger/internal/audit"
	"kunafa-ledger/internal/auth"
	"kunafa-ledger/internal/observability/metrics"
	"kunafa-ledger/internal/sales/application"
	sales "kunafa-ledger/internal/sales/domain"
	"kunafa-ledger/internal/sales/locale"
)

const (
	salesPrefix    = "/api/v1/sales"
	maxUploadBytes = 10 << 20
	contentTypePDF = "application/pdf"
	contentTypeXLS = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Settings configures a SalesHandler.
type Settings struct {
	Locale      locale.Locale
	PageSize    int
	ProductName string
	FontPath    string
}

// SalesHandler handles ledger APIs under /api/v1/sales.
type SalesHandler struct {
	ledger      *application.Ledger
	importer    *application.Importer
	settings    Settings
	clock       sales.Clock
	auditLogger audit.Logger
	logger      *log.Logger
}

// HandlerOption customizes a SalesHandler.
type HandlerOption func(*SalesHandler)

// WithClock overrides the wall clock used for "today".
func WithClock(clock sales.Clock) HandlerOption {
	return func(h *SalesHandler) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewSalesHandler constructs a handler.
func NewSalesHandler(ledger *application.Ledger, importer *application.Importer, settings Settings, auditLogger audit.Logger, logger *log.Logger, opts ...HandlerOption) (*SalesHandler, error) {
	if ledger == nil {
		return nil, errors.New("sales handler: nil ledger")
	}
	if importer == nil {
		return nil, errors.New("sales handler: nil importer")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if settings.PageSize <= 0 {
		settings.PageSize = application.DefaultPageSize
	}
	if _, err := locale.Parse(string(settings.Locale)); err != nil {
		settings.Locale = locale.French
	}
	h := &SalesHandler{
		ledger:      ledger,
		importer:    importer,
		settings:    settings,
		clock:       sales.SystemClock{},
		auditLogger: auditLogger,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP routes ledger requests.
func (h *SalesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == salesPrefix && r.Method == http.MethodGet:
		h.handleList(w, r)
		return
	case path == salesPrefix && r.Method == http.MethodPost:
		h.handleAdd(w, r)
		return
	case path == salesPrefix+"/stats" && r.Method == http.MethodGet:
		h.handleStats(w, r)
		return
	case path == salesPrefix+"/import" && r.Method == http.MethodPost:
		h.handleImport(w, r)
		return
	case path == salesPrefix+"/export.xlsx" && r.Method == http.MethodGet:
		h.handleExport(w, r, "xlsx")
		return
	case path == salesPrefix+"/export.pdf" && r.Method == http.MethodGet:
		h.handleExport(w, r, "pdf")
		return
	case strings.HasPrefix(path, salesPrefix+"/") && r.Method == http.MethodDelete:
		id := strings.TrimPrefix(path, salesPrefix+"/")
		if id != "" && !strings.Contains(id, "/") {
			h.handleDelete(w, r, id)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

type saleView struct {
	ID        string          `json:"id"`
	Date      sales.Date      `json:"date"`
	DateLabel string          `json:"date_label"`
	Amount    decimal.Decimal `json:"amount"`
	Type      sales.SaleType  `json:"type,omitempty"`
	TypeLabel string          `json:"type_label,omitempty"`
	Note      string          `json:"note,omitempty"`
}

func newSaleView(record sales.SaleRecord, loc locale.Locale) saleView {
	return saleView{
		ID:        record.ID,
		Date:      record.Date,
		DateLabel: locale.FormatLong(record.Date, loc),
		Amount:    record.Amount,
		Type:      record.Type,
		TypeLabel: locale.LabelsFor(loc).TypeLabel(record.Type),
		Note:      record.Note,
	}
}

func (h *SalesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query, loc, err := h.parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pages := 1
	if raw := r.URL.Query().Get("pages"); raw != "" {
		pages, err = strconv.Atoi(raw)
		if err != nil || pages < 1 {
			http.Error(w, "invalid pages", http.StatusBadRequest)
			return
		}
	}

	filtered := application.Filter(h.ledger.GetAll(r.Context()), query, sales.Today(h.clock))
	window := application.Window(filtered, pages, h.settings.PageSize)
	items := make([]saleView, 0, len(window))
	for _, record := range window {
		items = append(items, newSaleView(record, loc))
	}
	remaining := application.Remaining(filtered, pages, h.settings.PageSize)
	resp := struct {
		Items     []saleView      `json:"items"`
		Count     int             `json:"count"`
		Total     decimal.Decimal `json:"total"`
		Label     string          `json:"label"`
		Pages     int             `json:"pages"`
		Remaining int             `json:"remaining"`
		HasMore   bool            `json:"has_more"`
	}{
		Items:     items,
		Count:     len(filtered),
		Total:     sales.Total(filtered),
		Label:     application.ExportLabel(query, loc),
		Pages:     pages,
		Remaining: remaining,
		HasMore:   remaining > 0,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SalesHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   string          `json:"date"`
		Amount json.RawMessage `json:"amount"`
		Type   string          `json:"type"`
		Note   string          `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	draft, err := h.draftFromRequest(req.Date, req.Amount, req.Type, req.Note)
	if err != nil {
		respondSalesError(w, err)
		return
	}
	record, err := h.ledger.Append(r.Context(), draft)
	if err != nil {
		respondSalesError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSaleView(record, h.settings.Locale))
	h.logAudit(r, record.ID, "sale.add", map[string]any{
		"date":   record.Date.String(),
		"amount": record.Amount.StringFixed(2),
		"type":   record.Type,
	})
}

func (h *SalesHandler) draftFromRequest(date string, amount json.RawMessage, saleType, note string) (sales.Draft, error) {
	day := sales.Today(h.clock)
	if strings.TrimSpace(date) != "" {
		parsed, err := sales.ParseDate(strings.TrimSpace(date))
		if err != nil {
			parsed, err = sales.ParseStrictDMY(date)
		}
		if err != nil {
			return sales.Draft{}, err
		}
		day = parsed
	}
	value, err := decodeAmount(amount)
	if err != nil {
		return sales.Draft{}, err
	}
	kind, err := sales.ParseSaleType(saleType)
	if err != nil {
		return sales.Draft{}, err
	}
	return sales.Draft{Date: day, Amount: value, Type: kind, Note: note}, nil
}

// decodeAmount accepts a JSON number or a string using either decimal separator.
func decodeAmount(raw json.RawMessage) (decimal.Decimal, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %v", sales.ErrInvalidAmount, err)
		}
	}
	return sales.ParseAmount(text)
}

func (h *SalesHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if !h.ledger.RemoveByID(r.Context(), id) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, id, "sale.delete", nil)
}

func (h *SalesHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	_, loc, err := h.parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stats := application.Stats(h.ledger.GetAll(r.Context()), sales.Today(h.clock), loc)
	writeJSON(w, http.StatusOK, stats)
}

func (h *SalesHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var src io.Reader = r.Body
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "invalid file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		src = file
	}

	result, err := h.importer.Import(r.Context(), src)
	if err != nil {
		if errors.Is(err, sales.ErrInvalidFile) {
			h.logger.Printf("import rejected: %v", err)
			http.Error(w, "invalid file", http.StatusBadRequest)
			return
		}
		if errors.Is(err, sales.ErrStorageUnavailable) {
			h.logger.Printf("import aborted: %v", err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		h.logger.Printf("import error: %v", err)
		http.Error(w, "import error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
	h.logAudit(r, "", "sale.import", map[string]any{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})
}

func (h *SalesHandler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(format, result, time.Since(start))
	}()

	query, loc, err := h.parseQuery(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	today := sales.Today(h.clock)
	records := application.Filter(h.ledger.GetAll(r.Context()), query, today)
	label := application.ExportLabel(query, loc)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "pdf":
		contentType = contentTypePDF
		data, err = BuildSalesPDF(records, label, loc, ExportOptions{
			ProductName: h.settings.ProductName,
			FontPath:    h.settings.FontPath,
			Today:       today,
		})
	default:
		contentType = contentTypeXLS
		data, err = BuildSalesXLSX(records, label, loc)
	}
	if err != nil {
		result = metrics.ResultError
		h.logger.Printf("export %s error: %v", format, err)
		http.Error(w, "export unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFileName(h.settings.ProductName, today, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, "", "sale.export", map[string]any{
		"format": format,
		"label":  label,
		"rows":   len(records),
	})
}

func (h *SalesHandler) parseQuery(r *http.Request) (application.Query, locale.Locale, error) {
	values := r.URL.Query()
	period, err := sales.ParsePeriod(values.Get("period"))
	if err != nil {
		return application.Query{}, "", err
	}
	loc := h.settings.Locale
	if raw := values.Get("locale"); raw != "" {
		loc, err = locale.Parse(raw)
		if err != nil {
			return application.Query{}, "", err
		}
	}
	return application.Query{Period: period, SearchDate: values.Get("date")}, loc, nil
}

func (h *SalesHandler) logAudit(r *http.Request, saleID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload []byte
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	err := h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "sale",
		ResourceID:   saleID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		h.logger.Printf("audit log error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondSalesError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, sales.ErrInvalidDate),
		errors.Is(err, sales.ErrInvalidAmount),
		errors.Is(err, sales.ErrInvalidType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, sales.ErrSaleNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, sales.ErrStorageUnavailable):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
