package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kunafa-ledger/internal/observability/metrics"
	sales "kunafa-ledger/internal/sales/domain"
)

// Ledger is the persisted sale ledger. Reads fail open to an empty ledger and
// writes are best effort: write failures are logged and counted, never returned.
// A mutation never writes over a slot it could not read.
type Ledger struct {
	mu     sync.Mutex
	slot   sales.Slot
	logger *log.Logger
	newID  func() string
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithIDGenerator overrides the record id source.
func WithIDGenerator(fn func() string) LedgerOption {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// NewLedger constructs a ledger over slot.
func NewLedger(slot sales.Slot, logger *log.Logger, opts ...LedgerOption) (*Ledger, error) {
	if slot == nil {
		return nil, errors.New("ledger: nil slot")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	l := &Ledger{slot: slot, logger: logger, newID: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Patch changes the date, amount or note of a record. Nil fields are kept.
type Patch struct {
	Date   *sales.Date
	Amount *decimal.Decimal
	Note   *string
}

// GetAll returns the whole ledger, most recent date first.
func (l *Ledger) GetAll(ctx context.Context) []sales.SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	records, _ := l.load(ctx)
	return records
}

// SaveAll replaces the persisted ledger with records.
func (l *Ledger) SaveAll(ctx context.Context, records []sales.SaleRecord) {
	sorted := append([]sales.SaleRecord(nil), records...)
	sales.SortByDateDesc(sorted)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store(ctx, sorted)
}

// Append assigns a fresh id to draft, inserts it and persists the ledger.
// An invalid draft or an unreadable slot is an error; nothing is written then.
func (l *Ledger) Append(ctx context.Context, draft sales.Draft) (sales.SaleRecord, error) {
	normalized, err := draft.Normalize()
	if err != nil {
		return sales.SaleRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	records, err := l.load(ctx)
	if err != nil {
		return sales.SaleRecord{}, err
	}
	record := normalized.Record(l.uniqueID(records))
	records = append(records, record)
	sales.SortByDateDesc(records)
	l.store(ctx, records)
	metrics.IncLedgerMutation(metrics.OpAppend)
	return record, nil
}

// RemoveByID deletes the record with id and reports whether it was removed.
// It reports false when the slot cannot be read.
func (l *Ledger) RemoveByID(ctx context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	records, err := l.load(ctx)
	if err != nil {
		return false
	}
	kept := records[:0]
	removed := false
	for _, record := range records {
		if record.ID == id {
			removed = true
			continue
		}
		kept = append(kept, record)
	}
	if !removed {
		return false
	}
	l.store(ctx, kept)
	metrics.IncLedgerMutation(metrics.OpDelete)
	return true
}

// Update patches date, amount or note of a record. The type is never changed.
func (l *Ledger) Update(ctx context.Context, id string, patch Patch) (sales.SaleRecord, error) {
	if id == "" {
		return sales.SaleRecord{}, sales.ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	records, err := l.load(ctx)
	if err != nil {
		return sales.SaleRecord{}, err
	}
	index := -1
	for i := range records {
		if records[i].ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return sales.SaleRecord{}, sales.ErrSaleNotFound
	}

	current := records[index]
	draft := sales.Draft{Date: current.Date, Amount: current.Amount, Type: current.Type, Note: current.Note}
	if patch.Date != nil {
		draft.Date = *patch.Date
	}
	if patch.Amount != nil {
		draft.Amount = *patch.Amount
	}
	if patch.Note != nil {
		draft.Note = *patch.Note
	}
	normalized, err := draft.Normalize()
	if err != nil {
		return sales.SaleRecord{}, err
	}
	records[index] = normalized.Record(id)
	updated := records[index]
	sales.SortByDateDesc(records)
	l.store(ctx, records)
	metrics.IncLedgerMutation(metrics.OpUpdate)
	return updated, nil
}

// load returns the stored ledger. A document that fails to decode reads as an
// empty ledger; a failed slot read also yields an empty ledger but is returned
// as ErrStorageUnavailable so that mutations skip the write.
func (l *Ledger) load(ctx context.Context) ([]sales.SaleRecord, error) {
	data, err := l.slot.Read(ctx)
	if err != nil {
		l.logger.Printf("ledger read error: %v", err)
		metrics.IncStorageError(metrics.OpRead)
		return []sales.SaleRecord{}, fmt.Errorf("%w: %v", sales.ErrStorageUnavailable, err)
	}
	records, err := sales.DecodeLedger(data)
	if err != nil {
		l.logger.Printf("ledger decode error: %v", err)
		metrics.IncStorageError(metrics.OpRead)
		return []sales.SaleRecord{}, nil
	}
	if records == nil {
		return []sales.SaleRecord{}, nil
	}
	return records, nil
}

func (l *Ledger) store(ctx context.Context, records []sales.SaleRecord) {
	data, err := sales.EncodeLedger(records)
	if err != nil {
		l.logger.Printf("ledger encode error: %v", err)
		metrics.IncStorageError(metrics.OpWrite)
		return
	}
	if err := l.slot.Write(ctx, data); err != nil {
		l.logger.Printf("ledger write error: %v", err)
		metrics.IncStorageError(metrics.OpWrite)
	}
}

func (l *Ledger) uniqueID(records []sales.SaleRecord) string {
	used := make(map[string]struct{}, len(records))
	for _, record := range records {
		used[record.ID] = struct{}{}
	}
	for {
		id := l.newID()
		if _, taken := used[id]; id != "" && !taken {
			return id
		}
	}
}
