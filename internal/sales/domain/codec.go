package sales

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// storedSale mirrors the persisted slot shape. Pointers mark required fields.
type storedSale struct {
	ID     *string  `json:"id"`
	Date   *string  `json:"date"`
	Amount *float64 `json:"amount"`
	Type   *string  `json:"type,omitempty"`
	Note   *string  `json:"note,omitempty"`
}

// EncodeLedger serializes records into the slot format.
func EncodeLedger(records []SaleRecord) ([]byte, error) {
	out := make([]storedSale, 0, len(records))
	for _, record := range records {
		id := record.ID
		date := record.Date.String()
		amount := record.Amount.InexactFloat64()
		item := storedSale{ID: &id, Date: &date, Amount: &amount}
		if record.Type != SaleTypeNone {
			saleType := string(record.Type)
			item.Type = &saleType
		}
		if record.Note != "" {
			note := record.Note
			item.Note = &note
		}
		out = append(out, item)
	}
	return json.Marshal(out)
}

// DecodeLedger parses and schema-checks slot data. Any invalid element fails the
// whole document; empty input is an empty ledger.
func DecodeLedger(data []byte) ([]SaleRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] != '[' {
		return nil, fmt.Errorf("%w: not an array", ErrCorruptLedger)
	}
	var raw []storedSale
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
	}

	records := make([]SaleRecord, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, item := range raw {
		record, err := decodeSale(item)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrCorruptLedger, i, err)
		}
		if _, dup := seen[record.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrCorruptLedger, record.ID)
		}
		seen[record.ID] = struct{}{}
		records = append(records, record)
	}
	SortByDateDesc(records)
	return records, nil
}

func decodeSale(item storedSale) (SaleRecord, error) {
	if item.ID == nil || *item.ID == "" {
		return SaleRecord{}, ErrEmptyID
	}
	if item.Date == nil {
		return SaleRecord{}, ErrInvalidDate
	}
	date, err := ParseDate(*item.Date)
	if err != nil {
		return SaleRecord{}, err
	}
	if item.Amount == nil || *item.Amount < 0 {
		return SaleRecord{}, ErrInvalidAmount
	}
	record := SaleRecord{
		ID:     *item.ID,
		Date:   date,
		Amount: RoundCents(decimal.NewFromFloat(*item.Amount)),
	}
	if item.Type != nil {
		saleType, err := ParseSaleType(*item.Type)
		if err != nil {
			return SaleRecord{}, err
		}
		record.Type = saleType
	}
	if item.Note != nil {
		record.Note = *item.Note
	}
	return record, nil
}

// SortByDateDesc orders records most recent first, keeping the relative order of
// same-day records.
func SortByDateDesc(records []SaleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}
