package application

import (
	"testing"
	"time"

	sales "kunafa-ledger/internal/sales/domain"
	"kunafa-ledger/internal/sales/locale"
)

func TestStats(t *testing.T) {
	today := sales.NewDate(2025, time.March, 10)
	records := []sales.SaleRecord{
		draft("2025-03-09", "10.10", sales.SaleTypeKunafa, "").Record("a"),
		draft("2025-03-01", "0.20", sales.SaleTypeNone, "").Record("b"),
		draft("2025-02-28", "99", sales.SaleTypeFlan, "").Record("c"),
	}
	stats := Stats(records, today, locale.French)
	if stats.Month != "2025-03" || stats.CountMonth != 2 || stats.TotalMonth.StringFixed(2) != "10.30" {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.LastSale == nil || stats.LastSale.Label != "Hier" || stats.LastSale.Amount.StringFixed(2) != "10.10" {
		t.Fatalf("unexpected last sale %+v", stats.LastSale)
	}

	empty := Stats(nil, today, locale.French)
	if empty.LastSale != nil || empty.CountMonth != 0 || !empty.TotalMonth.IsZero() {
		t.Fatalf("unexpected empty stats %+v", empty)
	}
}
