package application

import (
	"github.com/shopspring/decimal"

	sales "kunafa-ledger/internal/sales/domain"
	"kunafa-ledger/internal/sales/locale"
)

// LastSale describes the most recent ledger entry.
type LastSale struct {
	Date   sales.Date      `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Label  string          `json:"label"`
}

// MonthStats summarises the current month.
type MonthStats struct {
	Month      string          `json:"month"`
	TotalMonth decimal.Decimal `json:"total_month"`
	CountMonth int             `json:"count_month"`
	LastSale   *LastSale       `json:"last_sale,omitempty"`
}

// Stats computes the current-month tiles. records must be sorted most recent first.
func Stats(records []sales.SaleRecord, today sales.Date, loc locale.Locale) MonthStats {
	key := sales.MonthKey(today)
	stats := MonthStats{Month: key, TotalMonth: decimal.Zero}
	for _, record := range records {
		if sales.MonthKey(record.Date) == key {
			stats.TotalMonth = stats.TotalMonth.Add(record.Amount)
			stats.CountMonth++
		}
	}
	if len(records) > 0 {
		last := records[0]
		stats.LastSale = &LastSale{
			Date:   last.Date,
			Amount: last.Amount,
			Label:  locale.RelativeDay(last.Date, today, loc),
		}
	}
	return stats
}
