package catalog

import (
	"strings"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// Criteria is the shopper's current catalog narrowing selection.
type Criteria struct {
	// Categories holds the enabled categories. An empty set matches nothing.
	Categories   map[Category]struct{}
	PriceMin     pricing.Money
	PriceMax     pricing.Money
	New          bool
	Promotion    bool
	LimitedStock bool
}

// DefaultCriteria mirrors the catalog page's initial state: every category
// enabled, prices 0 to 500, no flag toggles.
func DefaultCriteria() Criteria {
	return Criteria{
		Categories: EnableCategories(Categories()...),
		PriceMin:   0,
		PriceMax:   pricing.FromUnits(500),
	}
}

// EnableCategories builds a category set.
func EnableCategories(cats ...Category) map[Category]struct{} {
	set := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set
}

// Filter returns the products matching every criterion and the query, in the
// order of the source collection. It never mutates its inputs.
func Filter(products []Product, c Criteria, query string) []Product {
	out := make([]Product, 0, len(products))
	if len(c.Categories) == 0 {
		return out
	}
	needle := strings.ToLower(query)
	for _, p := range products {
		if c.matches(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

// matches expects needle already lower-cased.
func (c Criteria) matches(p Product, needle string) bool {
	if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
		return false
	}
	if _, ok := c.Categories[p.Category]; !ok {
		return false
	}
	if c.New && !p.IsNew {
		return false
	}
	if c.Promotion && !p.IsOnPromotion {
		return false
	}
	if c.LimitedStock && !p.IsLimitedStock {
		return false
	}
	return c.PriceMin <= p.Price && p.Price <= c.PriceMax
}
