package sales

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SaleType categorises a sale. The zero value means uncategorized.
type SaleType string

const (
	SaleTypeNone   SaleType = ""
	SaleTypeKunafa SaleType = "kunafa"
	SaleTypeFlan   SaleType = "flan"
)

// ParseSaleType validates a stored type value.
func ParseSaleType(value string) (SaleType, error) {
	switch SaleType(value) {
	case SaleTypeNone, SaleTypeKunafa, SaleTypeFlan:
		return SaleType(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, value)
	}
}

// SaleRecord is one day's sale entry in the ledger.
type SaleRecord struct {
	ID     string
	Date   Date
	Amount decimal.Decimal
	Type   SaleType
	Note   string
}

// Draft is a sale before the ledger assigns its id.
type Draft struct {
	Date   Date
	Amount decimal.Decimal
	Type   SaleType
	Note   string
}

// Normalize validates the draft and applies write-time rounding and trimming.
func (d Draft) Normalize() (Draft, error) {
	if d.Date.IsZero() {
		return Draft{}, ErrInvalidDate
	}
	if d.Amount.IsNegative() {
		return Draft{}, fmt.Errorf("%w: %s", ErrInvalidAmount, d.Amount)
	}
	if _, err := ParseSaleType(string(d.Type)); err != nil {
		return Draft{}, err
	}
	d.Amount = RoundCents(d.Amount)
	d.Note = strings.TrimSpace(d.Note)
	return d, nil
}

// Record attaches an id to the draft.
func (d Draft) Record(id string) SaleRecord {
	return SaleRecord{ID: id, Date: d.Date, Amount: d.Amount, Type: d.Type, Note: d.Note}
}

// RoundCents rounds half away from zero to two decimals, which is half-up for the
// non-negative amounts the ledger accepts.
func RoundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ParseAmount parses a user or spreadsheet amount. Both '.' and ',' are accepted
// as decimal separator.
func ParseAmount(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	normalized := strings.Replace(trimmed, ",", ".", 1)
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	return RoundCents(amount), nil
}

// Total sums record amounts.
func Total(records []SaleRecord) decimal.Decimal {
	total := decimal.Zero
	for _, record := range records {
		total = total.Add(record.Amount)
	}
	return total
}

// DedupKey identifies a sale for import matching. The note is not part of it.
type DedupKey struct {
	Date   Date
	Amount string
	Type   SaleType
}

// KeyOf builds the dedup key of a record.
func KeyOf(record SaleRecord) DedupKey {
	return DedupKey{Date: record.Date, Amount: record.Amount.StringFixed(2), Type: record.Type}
}
