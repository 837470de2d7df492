package sales

import (
	"errors"
	"testing"
	"time"
)

func TestParseStrictDMY(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"31/04/2024", "", false},
		{"29/02/2024", "2024-02-29", true},
		{"29/02/2023", "", false},
		{"1/3/2025", "2025-03-01", true},
		{" 05 / 11 / 2025 ", "2025-11-05", true},
		{"00/01/2025", "", false},
		{"32/01/2025", "", false},
		{"10/13/2025", "", false},
		{"10/00/2025", "", false},
		{"2025-01-10", "", false},
		{"10/01/25", "", false},
		{"", "", false},
		{"aa/bb/cccc", "", false},
	}
	for _, tc := range cases {
		got, err := ParseStrictDMY(tc.input)
		if !tc.ok {
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("ParseStrictDMY(%q): expected invalid date, got %v (%v)", tc.input, got, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseStrictDMY(%q): %v", tc.input, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseStrictDMY(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	cases := map[string]string{
		"2025-03-03": "2025-03-03", // Monday
		"2025-03-05": "2025-03-03",
		"2025-03-08": "2025-03-03", // Saturday
		"2025-03-09": "2025-03-03", // Sunday closes the week
		"2025-03-10": "2025-03-10",
		"2025-01-01": "2024-12-30", // crosses the year
	}
	for in, want := range cases {
		d, err := ParseDate(in)
		if err != nil {
			t.Fatalf("parse %s: %v", in, err)
		}
		if got := WeekStart(d).String(); got != want {
			t.Fatalf("WeekStart(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestSameWeekAndMonthKey(t *testing.T) {
	wed := NewDate(2025, time.March, 5)
	if !SameWeek(wed, NewDate(2025, time.March, 3)) {
		t.Fatalf("expected last monday in same week")
	}
	if SameWeek(wed, NewDate(2025, time.March, 10)) {
		t.Fatalf("expected next monday in another week")
	}
	if got := MonthKey(wed); got != "2025-03" {
		t.Fatalf("month key = %s", got)
	}
}

func TestParsePeriod(t *testing.T) {
	for _, value := range []string{"", "all", "month", "week"} {
		if _, err := ParsePeriod(value); err != nil {
			t.Fatalf("ParsePeriod(%q): %v", value, err)
		}
	}
	if _, err := ParsePeriod("year"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}

func TestDateRollsOverAndFormats(t *testing.T) {
	d := NewDate(2024, time.February, 30)
	if d.String() != "2024-03-01" {
		t.Fatalf("unexpected normalization: %s", d)
	}
	if FormatDMY(d) != "01/03/2024" {
		t.Fatalf("unexpected DMY: %s", FormatDMY(d))
	}
	if n := NewDate(2025, time.March, 1).DaysUntil(NewDate(2025, time.March, 8)); n != 7 {
		t.Fatalf("days until = %d", n)
	}
}
