package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"kunafa-ledger/internal/observability/metrics"
	sales "kunafa-ledger/internal/sales/domain"
	"kunafa-ledger/internal/sales/locale"
)

// SheetReader returns the cell text of the first sheet of a workbook, header row
// first. Unreadable input must be reported wrapped in sales.ErrInvalidFile.
type SheetReader interface {
	ReadFirstSheet(r io.Reader) ([][]string, error)
}

// ImportResult counts appended and duplicate rows. Rows that fail date or amount
// parsing appear in neither count.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer loads exported spreadsheets back into the ledger.
type Importer struct {
	mu     sync.Mutex
	ledger *Ledger
	reader SheetReader
	locale locale.Locale
}

// NewImporter constructs an importer. loc is tried first when matching headers.
func NewImporter(ledger *Ledger, reader SheetReader, loc locale.Locale) (*Importer, error) {
	if ledger == nil {
		return nil, errors.New("importer: nil ledger")
	}
	if reader == nil {
		return nil, errors.New("importer: nil reader")
	}
	return &Importer{ledger: ledger, reader: reader, locale: loc}, nil
}

// Import parses r and appends every sale not already in the ledger. Imports run
// one at a time.
func (i *Importer) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	start := time.Now()
	result := ImportResult{}
	status := metrics.ResultSuccess
	defer func() {
		metrics.ObserveImport(status, result.Imported, result.Skipped, time.Since(start))
	}()

	rows, err := i.reader.ReadFirstSheet(r)
	if err != nil {
		status = metrics.ResultError
		if errors.Is(err, sales.ErrInvalidFile) {
			return result, err
		}
		return result, fmt.Errorf("%w: %v", sales.ErrInvalidFile, err)
	}
	if len(rows) == 0 {
		return result, nil
	}
	loc, ok := i.detectLocale(rows[0])
	if !ok {
		status = metrics.ResultError
		return result, fmt.Errorf("%w: unexpected header %q", sales.ErrInvalidFile, rows[0])
	}
	labels := locale.LabelsFor(loc)

	i.mu.Lock()
	defer i.mu.Unlock()

	existing := make(map[sales.DedupKey]struct{})
	for _, record := range i.ledger.GetAll(ctx) {
		existing[sales.KeyOf(record)] = struct{}{}
	}

	for _, row := range rows[1:] {
		draft, ok := parseRow(row, labels, loc)
		if !ok {
			continue
		}
		key := sales.KeyOf(draft.Record(""))
		if _, dup := existing[key]; dup {
			result.Skipped++
			continue
		}
		if _, err := i.ledger.Append(ctx, draft); err != nil {
			if errors.Is(err, sales.ErrStorageUnavailable) {
				status = metrics.ResultError
				return result, err
			}
			continue
		}
		existing[key] = struct{}{}
		result.Imported++
	}
	return result, nil
}

func (i *Importer) detectLocale(header []string) (locale.Locale, bool) {
	candidates := append([]locale.Locale{i.locale}, locale.Supported...)
	for _, loc := range candidates {
		if headerMatches(header, locale.LabelsFor(loc).Columns()) {
			return loc, true
		}
	}
	return "", false
}

func headerMatches(header, columns []string) bool {
	if len(header) < len(columns) {
		return false
	}
	for idx, column := range columns {
		if strings.TrimSpace(header[idx]) != column {
			return false
		}
	}
	for _, extra := range header[len(columns):] {
		if strings.TrimSpace(extra) != "" {
			return false
		}
	}
	return true
}

const (
	colDate = iota
	colType
	colAmount
	colNote
)

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow converts a data row. Summary, placeholder and malformed rows are rejected.
func parseRow(row []string, labels locale.Labels, loc locale.Locale) (sales.Draft, bool) {
	dateText := cell(row, colDate)
	note := cell(row, colNote)
	if note == labels.Total || dateText == labels.NoSales {
		return sales.Draft{}, false
	}
	date, err := locale.ParseLong(dateText, loc)
	if err != nil {
		return sales.Draft{}, false
	}
	amount, err := sales.ParseAmount(cell(row, colAmount))
	if err != nil {
		return sales.Draft{}, false
	}
	return sales.Draft{
		Date:   date,
		Amount: amount,
		Type:   labels.ParseTypeLabel(cell(row, colType)),
		Note:   note,
	}, true
}
