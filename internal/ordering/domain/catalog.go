package ordering

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"kunafa-ledger/internal/sales/locale"
)

// ErrUnknownProduct is returned for an id missing from the catalog.
var ErrUnknownProduct = errors.New("ordering: unknown product")

// ErrInvalidQuantity is returned for negative quantities.
var ErrInvalidQuantity = errors.New("ordering: invalid quantity")

// Product is a menu entry priced in dirhams.
type Product struct {
	ID    string
	Price decimal.Decimal
	names map[locale.Locale]string
}

// Name returns the display name of the product in loc, falling back to French.
func (p Product) Name(loc locale.Locale) string {
	if name, ok := p.names[loc]; ok {
		return name
	}
	return p.names[locale.French]
}

func product(id, price, fr, ar string) Product {
	return Product{
		ID:    id,
		Price: decimal.RequireFromString(price),
		names: map[locale.Locale]string{locale.French: fr, locale.Arabic: ar},
	}
}

var menu = []Product{
	product("baklava_carre_noix", "11", "Baklava carré noix", "بقلاوة مربعة بالجوز"),
	product("baklava_losange_noix", "3.5", "Baklava losange noix", "بقلاوة معيّن باللوز"),
	product("baklava_roule", "9", "Baklava roulé", "بقلاوة ملفوفة"),
	product("kunafa_a_la_creme", "10", "Kunafa à la crème", "كنافة بالكريمة"),
	product("kunafa_fruits_secs_mix", "8", "Kunafa fruits secs mix", "كنافة فواكه جافة ميكس"),
	product("kunafa_mini_nid_amandes", "3", "Kunafa mini nid amandes", "كنافة ميني عش لوز"),
	product("kunafa_roll_nid_mix", "8", "Kunafa nid mix", "كنافة عش البلبل"),
	product("kunafa_nutella", "9", "Kunafa Nutella", "كنافة نوتيلا"),
}

// Menu returns the catalog in display order.
func Menu() []Product {
	out := make([]Product, len(menu))
	copy(out, menu)
	return out
}

// Lookup finds a product by id.
func Lookup(id string) (Product, error) {
	for _, p := range menu {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
}
