package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kunafa-ledger/internal/app"
	"kunafa-ledger/internal/auth"
	"kunafa-ledger/internal/config"
	orderhttp "kunafa-ledger/internal/ordering/interfaces/http"
	salesinterfaces "kunafa-ledger/internal/sales/interfaces"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	rt, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("runtime error: %v", err)
	}
	defer rt.Close()

	salesHandler, err := salesinterfaces.NewSalesHandler(rt.Ledger, rt.Importer, salesinterfaces.Settings{
		Locale:      cfg.UILocale(),
		PageSize:    cfg.PageSize,
		ProductName: cfg.ProductName,
		FontPath:    cfg.PDFFontPath,
	}, rt.Audit, logger)
	if err != nil {
		logger.Fatalf("sales handler error: %v", err)
	}
	orderHandler, err := orderhttp.NewOrderHandler(cfg.WhatsAppNumber, cfg.UILocale(), logger)
	if err != nil {
		logger.Fatalf("order handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/sales", salesHandler)
	mux.Handle("/api/v1/sales/", salesHandler)
	mux.Handle("/api/v1/orders/", orderHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	if cfg.AuthEnabled() {
		policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/api/v1/orders/"})
		handler = auth.NewMiddleware([]byte(cfg.JWTSecret), policy).Wrap(mux)
	} else {
		logger.Printf("auth disabled: AUTH_JWT_SECRET not set")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("http listening on %s (storage=%s locale=%s)", cfg.HTTPAddr, cfg.StorageBackend, cfg.UILocale())
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
