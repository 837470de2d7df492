package locale

import (
	"fmt"
	"time"

	sales "kunafa-ledger/internal/sales/domain"
)

type calendarNames struct {
	weekdaysShort [7]string
	monthsShort   [12]string
	monthsLong    [12]string
}

var names = map[Locale]calendarNames{
	French: {
		weekdaysShort: [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
		monthsShort:   [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		monthsLong:    [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	},
	Arabic: {
		weekdaysShort: [7]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"},
		monthsShort:   [12]string{"يناير", "فبراير", "مارس", "أبريل", "ماي", "يونيو", "يوليوز", "غشت", "شتنبر", "أكتوبر", "نونبر", "دجنبر"},
		monthsLong:    [12]string{"يناير", "فبراير", "مارس", "أبريل", "ماي", "يونيو", "يوليوز", "غشت", "شتنبر", "أكتوبر", "نونبر", "دجنبر"},
	},
}

func namesFor(loc Locale) calendarNames {
	if n, ok := names[loc]; ok {
		return n
	}
	return names[French]
}

// FormatLong renders "weekday day month year", e.g. "ven. 28 févr. 2025".
func FormatLong(d sales.Date, loc Locale) string {
	n := namesFor(loc)
	return fmt.Sprintf("%s %d %s %d", n.weekdaysShort[d.Weekday()], d.Day(), n.monthsShort[d.Month()-time.January], d.Year())
}

// FormatShort renders "day month", e.g. "28 févr.".
func FormatShort(d sales.Date, loc Locale) string {
	n := namesFor(loc)
	return fmt.Sprintf("%d %s", d.Day(), n.monthsShort[d.Month()-time.January])
}

// FormatGenerated renders "day month year" with the full month name.
func FormatGenerated(d sales.Date, loc Locale) string {
	n := namesFor(loc)
	return fmt.Sprintf("%d %s %d", d.Day(), n.monthsLong[d.Month()-time.January], d.Year())
}

// RelativeDay describes day as seen from today: today, yesterday, a few days ago,
// or its short date.
func RelativeDay(day, today sales.Date, loc Locale) string {
	l := LabelsFor(loc)
	diff := day.DaysUntil(today)
	switch {
	case diff == 0:
		return l.Today
	case diff == 1:
		return l.Yesterday
	case diff > 1 && diff < 7:
		return fmt.Sprintf(l.DaysAgo, diff)
	default:
		return FormatShort(day, loc)
	}
}
