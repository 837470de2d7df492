package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "kunafa_"

	resultSuccess = "success"
	resultError   = "error"

	rowImported = "imported"
	rowSkipped  = "skipped"
)

var (
	registerOnce sync.Once

	ledgerMutations *prometheus.CounterVec
	storageErrors   *prometheus.CounterVec

	importTotal   *prometheus.CounterVec
	importLatency *prometheus.HistogramVec
	importRows    *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	orderLinks prometheus.Counter
)

// Init registers ledger metrics and, when db is set, connection pool gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ledgerMutations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_mutations_total",
				Help: "Total ledger mutations by operation",
			},
			[]string{"op"},
		)
		storageErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "storage_errors_total",
				Help: "Swallowed ledger storage failures by operation",
			},
			[]string{"op"},
		)

		importTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_total",
				Help: "Total spreadsheet imports by result",
			},
			[]string{"result"},
		)
		importLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "import_latency_seconds",
				Help:    "Spreadsheet import latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		importRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_rows_total",
				Help: "Imported spreadsheet rows by outcome",
			},
			[]string{"outcome"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total ledger exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Ledger export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		orderLinks = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "order_links_total",
				Help: "Total WhatsApp order links built",
			},
		)

		prometheus.MustRegister(
			ledgerMutations,
			storageErrors,
			importTotal,
			importLatency,
			importRows,
			exportTotal,
			exportLatency,
			orderLinks,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// IncLedgerMutation counts an append, delete or update.
func IncLedgerMutation(op string) {
	if op == "" {
		op = "unknown"
	}
	if ledgerMutations != nil {
		ledgerMutations.WithLabelValues(op).Inc()
	}
}

// IncStorageError counts a swallowed read or write failure.
func IncStorageError(op string) {
	if op == "" {
		op = "unknown"
	}
	if storageErrors != nil {
		storageErrors.WithLabelValues(op).Inc()
	}
}

// ObserveImport records import latency, result and row outcomes.
func ObserveImport(result string, imported, skipped int, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if importTotal != nil {
		importTotal.WithLabelValues(result).Inc()
	}
	if importLatency != nil {
		importLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if importRows != nil {
		if imported > 0 {
			importRows.WithLabelValues(rowImported).Add(float64(imported))
		}
		if skipped > 0 {
			importRows.WithLabelValues(rowSkipped).Add(float64(skipped))
		}
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncOrderLink counts a built order link.
func IncOrderLink() {
	if orderLinks != nil {
		orderLinks.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	OpAppend = "append"
	OpDelete = "delete"
	OpUpdate = "update"
	OpRead   = "read"
	OpWrite  = "write"
)
