package orderhttp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"kunafa-ledger/internal/observability/metrics"
	ordering "kunafa-ledger/internal/ordering/domain"
	"kunafa-ledger/internal/sales/locale"
)

// OrderHandler builds WhatsApp order links.
type OrderHandler struct {
	number string
	locale locale.Locale
	logger *log.Logger
}

// NewOrderHandler constructs a handler for the shop's WhatsApp number.
func NewOrderHandler(number string, defaultLocale locale.Locale, logger *log.Logger) (*OrderHandler, error) {
	if number == "" {
		return nil, errors.New("order handler: empty whatsapp number")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OrderHandler{number: number, locale: defaultLocale, logger: logger}, nil
}

// ServeHTTP handles POST /api/v1/orders/whatsapp and GET /api/v1/orders/menu.
func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/orders/whatsapp" && r.Method == http.MethodPost:
		h.handleWhatsApp(w, r)
	case r.URL.Path == "/api/v1/orders/menu" && r.Method == http.MethodGet:
		h.handleMenu(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *OrderHandler) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Locale string                `json:"locale"`
		Items  []ordering.Selection `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	loc := h.locale
	if req.Locale != "" {
		parsed, err := locale.Parse(req.Locale)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		loc = parsed
	}
	lines, err := ordering.ResolveLines(req.Items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	message := ordering.BuildOrderMessage(loc, lines)
	link := ordering.WhatsAppLink(h.number, message)
	metrics.IncOrderLink()

	resp := map[string]any{
		"url":     link,
		"message": message,
		"total":   ordering.Total(lines),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Printf("order response error: %v", err)
	}
}

func (h *OrderHandler) handleMenu(w http.ResponseWriter, r *http.Request) {
	loc := h.locale
	if raw := r.URL.Query().Get("locale"); raw != "" {
		parsed, err := locale.Parse(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		loc = parsed
	}
	type item struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Price string `json:"price"`
	}
	products := ordering.Menu()
	items := make([]item, 0, len(products))
	for _, p := range products {
		items = append(items, item{ID: p.ID, Name: p.Name(loc), Price: p.Price.StringFixed(2)})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}
