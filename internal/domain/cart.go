package domain

import "github.com/shopspring/decimal"

// CartItem is a product snapshot with a quantity of at least one.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// WishlistItem is a product snapshot without a quantity.
type WishlistItem = Product

// CartTotal sums price times quantity over all items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to an integer count of minor units,
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts an integer count of minor units back to major units.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}
