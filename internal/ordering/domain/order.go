package ordering

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"kunafa-ledger/internal/sales/locale"
)

// Line is one product and quantity of an order.
type Line struct {
	Product  Product
	Quantity int
}

// Amount returns price times quantity.
func (l Line) Amount() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Selection is a catalog id with a requested quantity.
type Selection struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// ResolveLines maps selections to catalog lines. Quantities of a repeated id are
// added up; zero quantities are kept and later ignored by the message.
func ResolveLines(selections []Selection) ([]Line, error) {
	lines := make([]Line, 0, len(selections))
	index := make(map[string]int, len(selections))
	for _, sel := range selections {
		if sel.Quantity < 0 {
			return nil, fmt.Errorf("%w: %d for %q", ErrInvalidQuantity, sel.Quantity, sel.ID)
		}
		p, err := Lookup(sel.ID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[p.ID]; ok {
			lines[i].Quantity += sel.Quantity
			continue
		}
		index[p.ID] = len(lines)
		lines = append(lines, Line{Product: p, Quantity: sel.Quantity})
	}
	return lines, nil
}

// Total sums the amounts of lines.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Quantity > 0 {
			total = total.Add(l.Amount())
		}
	}
	return total
}

// BuildOrderMessage renders the WhatsApp order text. Without any positive line
// only the greeting is returned.
func BuildOrderMessage(loc locale.Locale, lines []Line) string {
	labels := locale.LabelsFor(loc)
	var items []string
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		items = append(items, fmt.Sprintf("• %d x %s : %s %s", l.Quantity, l.Product.Name(loc), l.Amount().String(), labels.Currency))
	}
	if len(items) == 0 {
		return labels.OrderGreeting
	}
	parts := []string{
		labels.OrderGreeting,
		"",
		labels.OrderIntro,
		strings.Join(items, "\n"),
		"",
		labels.OrderSeparator,
		fmt.Sprintf("%s : %s %s", labels.Total, Total(lines).String(), labels.Currency),
	}
	return strings.Join(parts, "\n")
}

// WhatsAppLink returns the wa.me deep link that opens a chat with message
// prefilled. number is in E.164 form without the plus sign.
func WhatsAppLink(number, message string) string {
	number = strings.TrimPrefix(strings.TrimSpace(number), "+")
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + number + "?text=" + text
}
