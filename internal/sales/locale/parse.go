package locale

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	sales "kunafa-ledger/internal/sales/domain"
)

const (
	minYear = 2000
	maxYear = 2100
)

// monthKeys are folded month stems matched by prefix, in calendar order.
var monthKeys = map[Locale][12]string{
	French: {"janv", "fevr", "mars", "avr", "mai", "juin", "juil", "aout", "sept", "oct", "nov", "dec"},
}

func keysFor(loc Locale) [12]string {
	if keys, ok := monthKeys[loc]; ok {
		return keys
	}
	var keys [12]string
	for i, name := range namesFor(loc).monthsLong {
		keys[i] = fold(name)
	}
	return keys
}

// fold lower-cases s, strips combining marks and a trailing dot.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		folded = strings.ToLower(strings.TrimSpace(s))
	}
	return strings.TrimSuffix(folded, ".")
}

var arabicDigits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// ParseLong parses the FormatLong output of loc. The weekday is not checked;
// the month may be abbreviated or full.
func ParseLong(value string, loc Locale) (sales.Date, error) {
	fields := strings.Fields(value)
	if len(fields) < 4 {
		return sales.Date{}, fmt.Errorf("%w: %q", sales.ErrInvalidDate, value)
	}
	day, err := strconv.Atoi(arabicDigits.Replace(fields[1]))
	if err != nil {
		return sales.Date{}, fmt.Errorf("%w: %q", sales.ErrInvalidDate, value)
	}
	year, err := strconv.Atoi(arabicDigits.Replace(fields[3]))
	if err != nil {
		return sales.Date{}, fmt.Errorf("%w: %q", sales.ErrInvalidDate, value)
	}
	month, ok := matchMonth(fields[2], loc)
	if !ok {
		return sales.Date{}, fmt.Errorf("%w: unknown month in %q", sales.ErrInvalidDate, value)
	}
	if day < 1 || day > 31 || year < minYear || year > maxYear {
		return sales.Date{}, fmt.Errorf("%w: %q", sales.ErrInvalidDate, value)
	}
	if day > sales.DaysIn(year, month) {
		return sales.Date{}, fmt.Errorf("%w: %q", sales.ErrInvalidDate, value)
	}
	return sales.NewDate(year, month, day), nil
}

func matchMonth(token string, loc Locale) (time.Month, bool) {
	folded := fold(token)
	if folded == "" {
		return 0, false
	}
	keys := keysFor(loc)
	for i, key := range keys {
		if strings.HasPrefix(folded, key) {
			return time.Month(i + 1), true
		}
	}
	// Shorter than the stem ("fev"): accept only an unambiguous match.
	found := time.Month(0)
	for i, key := range keys {
		if strings.HasPrefix(key, folded) {
			if found != 0 {
				return 0, false
			}
			found = time.Month(i + 1)
		}
	}
	return found, found != 0
}
