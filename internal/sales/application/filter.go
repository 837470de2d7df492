package application

import (
	"strings"

	sales "kunafa-ledger/internal/sales/domain"
	"kunafa-ledger/internal/sales/locale"
)

// DefaultPageSize is the number of records revealed per page.
const DefaultPageSize = 10

// Query selects a view of the ledger. A SearchDate that parses as DD/MM/YYYY
// takes precedence over Period.
type Query struct {
	Period     sales.Period
	SearchDate string
}

// SearchDay returns the parsed search date, if any.
func (q Query) SearchDay() (sales.Date, bool) {
	if strings.TrimSpace(q.SearchDate) == "" {
		return sales.Date{}, false
	}
	day, err := sales.ParseStrictDMY(q.SearchDate)
	if err != nil {
		return sales.Date{}, false
	}
	return day, true
}

// Filter returns the records selected by q as seen from today. The input order
// is preserved and records are not copied deeply.
func Filter(records []sales.SaleRecord, q Query, today sales.Date) []sales.SaleRecord {
	if day, ok := q.SearchDay(); ok {
		return selectRecords(records, func(r sales.SaleRecord) bool { return r.Date == day })
	}
	switch q.Period {
	case sales.PeriodMonth:
		key := sales.MonthKey(today)
		return selectRecords(records, func(r sales.SaleRecord) bool { return sales.MonthKey(r.Date) == key })
	case sales.PeriodWeek:
		return selectRecords(records, func(r sales.SaleRecord) bool { return sales.SameWeek(r.Date, today) })
	default:
		return append([]sales.SaleRecord(nil), records...)
	}
}

func selectRecords(records []sales.SaleRecord, keep func(sales.SaleRecord) bool) []sales.SaleRecord {
	out := make([]sales.SaleRecord, 0, len(records))
	for _, record := range records {
		if keep(record) {
			out = append(out, record)
		}
	}
	return out
}

// ExportLabel names the view for export headers and sheet names.
func ExportLabel(q Query, loc locale.Locale) string {
	labels := locale.LabelsFor(loc)
	if day, ok := q.SearchDay(); ok {
		return labels.SearchDate + " " + sales.FormatDMY(day)
	}
	return labels.PeriodLabel(q.Period)
}

// Pager reveals a filtered view page by page. The visible window only grows.
type Pager struct {
	PageSize int
	pages    int
}

// NewPager constructs a pager showing the first page.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{PageSize: pageSize, pages: 1}
}

// Pages returns the number of revealed pages.
func (p *Pager) Pages() int { return p.pages }

// ShowMore reveals one more page.
func (p *Pager) ShowMore() { p.pages++ }

// Window returns the revealed prefix of filtered.
func (p *Pager) Window(filtered []sales.SaleRecord) []sales.SaleRecord {
	return Window(filtered, p.pages, p.PageSize)
}

// HasMore reports whether filtered holds records beyond the window.
func (p *Pager) HasMore(filtered []sales.SaleRecord) bool {
	return Remaining(filtered, p.pages, p.PageSize) > 0
}

// Window returns the first pages*pageSize records of filtered.
func Window(filtered []sales.SaleRecord, pages, pageSize int) []sales.SaleRecord {
	if pages < 1 {
		pages = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	limit := pages * pageSize
	if limit > len(filtered) {
		limit = len(filtered)
	}
	return filtered[:limit]
}

// Remaining counts records hidden beyond the window.
func Remaining(filtered []sales.SaleRecord, pages, pageSize int) int {
	return len(filtered) - len(Window(filtered, pages, pageSize))
}
