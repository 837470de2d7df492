package sales

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Period scopes the ledger view.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodMonth Period = "month"
	PeriodWeek  Period = "week"
)

// ParsePeriod validates a period selector. Empty means all.
func ParsePeriod(value string) (Period, error) {
	switch Period(strings.TrimSpace(value)) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodWeek:
		return PeriodWeek, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
}

// MonthKey returns the YYYY-MM key of d.
func MonthKey(d Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

// WeekStart returns the Monday of the week containing d. Sunday closes the week.
func WeekStart(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// SameWeek reports whether a and b share a Monday-based week.
func SameWeek(a, b Date) bool {
	return WeekStart(a) == WeekStart(b)
}

var dmyPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// ParseStrictDMY parses a DD/MM/YYYY search date. Whitespace is ignored; impossible
// days are rejected, never clamped.
func ParseStrictDMY(input string) (Date, error) {
	compact := strings.Join(strings.Fields(input), "")
	match := dmyPattern.FindStringSubmatch(compact)
	if match == nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}
	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}
	if day > DaysIn(year, time.Month(month)) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}
	return NewDate(year, time.Month(month), day), nil
}

// FormatDMY renders d as DD/MM/YYYY.
func FormatDMY(d Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day(), int(d.Month()), d.Year())
}
