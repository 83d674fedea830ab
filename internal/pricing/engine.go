package pricing

import "github.com/shopspring/decimal"

// Money represents a monetary value stored in minor units (cents).
type Money = int64

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	Count    int
	Subtotal Money
	Total    Money
}

// LineTotal returns unit price multiplied by quantity.
func LineTotal(unit Money, qty int) Money {
	if qty <= 0 {
		return 0
	}
	return unit * Money(qty)
}

// Compute calculates cart totals for the provided items. Delivery fees are
// settled with the shop manager after hand-off, so the total equals the subtotal.
func Compute(items []Item) Summary {
	var s Summary
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		s.Count += it.Qty
		s.Subtotal += LineTotal(it.UnitPrice, it.Qty)
	}
	s.Total = s.Subtotal
	return s
}

// FromUnits converts a whole-unit amount (e.g. 95 euros) into Money.
func FromUnits(units int64) Money {
	return units * 100
}

// Decimal exposes m as a decimal in major units.
func Decimal(m Money) decimal.Decimal {
	return decimal.New(m, -2)
}

// Format renders m in major units followed by the currency symbol. Whole amounts
// drop the fractional part ("285€"), others keep two digits ("12.50€").
func Format(m Money, symbol string) string {
	d := Decimal(m)
	if d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String() + symbol
	}
	return d.StringFixed(2) + symbol
}
