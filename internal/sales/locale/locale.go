// Package locale formats and parses sale dates and provides the labels used by the
// exporter and importer for each supported language.
package locale

import (
	"fmt"
	"strings"

	sales "kunafa-ledger/internal/sales/domain"
)

// Locale is a supported display language.
type Locale string

const (
	French Locale = "fr"
	Arabic Locale = "ar"
)

// Supported lists locales in import probing order.
var Supported = []Locale{French, Arabic}

// Parse validates a locale code. Empty means French.
func Parse(value string) (Locale, error) {
	switch Locale(strings.ToLower(strings.TrimSpace(value))) {
	case "", French:
		return French, nil
	case Arabic:
		return Arabic, nil
	default:
		return "", fmt.Errorf("locale: unsupported %q", value)
	}
}

// Labels holds user-facing strings of one locale.
type Labels struct {
	DateColumn     string
	TypeColumn     string
	AmountColumn   string
	NoteColumn     string
	Total          string
	NoSales        string
	HistoryTitle   string
	GeneratedOn    string
	TypeKunafa     string
	TypeFlan       string
	AllMonths      string
	CurrentMonth   string
	CurrentWeek    string
	SearchDate     string
	Today          string
	Yesterday      string
	DaysAgo        string
	Currency       string
	OrderGreeting  string
	OrderIntro     string
	OrderSeparator string
}

var labels = map[Locale]Labels{
	French: {
		DateColumn:     "Date",
		TypeColumn:     "Type",
		AmountColumn:   "Montant (DH)",
		NoteColumn:     "Note",
		Total:          "Total",
		NoSales:        "Aucune vente",
		HistoryTitle:   "Historique des ventes",
		GeneratedOn:    "Généré le",
		TypeKunafa:     "Kunafa",
		TypeFlan:       "Flan et autre",
		AllMonths:      "Tous les mois",
		CurrentMonth:   "Mois en cours",
		CurrentWeek:    "Semaine en cours",
		SearchDate:     "Date",
		Today:          "Aujourd'hui",
		Yesterday:      "Hier",
		DaysAgo:        "Il y a %d j",
		Currency:       "DH",
		OrderGreeting:  "Bonjour, je souhaite passer commande chez Sultan Kunafa.",
		OrderIntro:     "Voici ma commande :",
		OrderSeparator: "—————————————",
	},
	Arabic: {
		DateColumn:     "التاريخ",
		TypeColumn:     "النوع",
		AmountColumn:   "المبلغ (درهم)",
		NoteColumn:     "ملاحظة",
		Total:          "المجموع",
		NoSales:        "لا توجد مبيعات",
		HistoryTitle:   "سجل المبيعات",
		GeneratedOn:    "تم الإنشاء في",
		TypeKunafa:     "كنافة",
		TypeFlan:       "فلان وغيرها",
		AllMonths:      "كل الأشهر",
		CurrentMonth:   "الشهر الحالي",
		CurrentWeek:    "الأسبوع الحالي",
		SearchDate:     "التاريخ",
		Today:          "اليوم",
		Yesterday:      "أمس",
		DaysAgo:        "منذ %d يوم",
		Currency:       "درهم",
		OrderGreeting:  "مرحباً، أودّ تقديم طلب لدى سلطان كنافة.",
		OrderIntro:     "إليك طلبي:",
		OrderSeparator: "—————————————",
	},
}

// LabelsFor returns the labels of loc, falling back to French.
func LabelsFor(loc Locale) Labels {
	if l, ok := labels[loc]; ok {
		return l
	}
	return labels[French]
}

// Columns returns the four export column headers in order.
func (l Labels) Columns() []string {
	return []string{l.DateColumn, l.TypeColumn, l.AmountColumn, l.NoteColumn}
}

// TypeLabel returns the label of a sale type, empty when uncategorized.
func (l Labels) TypeLabel(t sales.SaleType) string {
	switch t {
	case sales.SaleTypeKunafa:
		return l.TypeKunafa
	case sales.SaleTypeFlan:
		return l.TypeFlan
	default:
		return ""
	}
}

// ParseTypeLabel matches a label exactly. Anything else is uncategorized.
func (l Labels) ParseTypeLabel(value string) sales.SaleType {
	switch value {
	case l.TypeKunafa:
		return sales.SaleTypeKunafa
	case l.TypeFlan:
		return sales.SaleTypeFlan
	default:
		return sales.SaleTypeNone
	}
}

// PeriodLabel returns the display name of a period selector.
func (l Labels) PeriodLabel(p sales.Period) string {
	switch p {
	case sales.PeriodMonth:
		return l.CurrentMonth
	case sales.PeriodWeek:
		return l.CurrentWeek
	default:
		return l.AllMonths
	}
}
