package catalog

import (
	"strings"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// Category is one of the shop's fixed product families.
type Category string

const (
	CategoryWines         Category = "Wines"
	CategorySpirits       Category = "Spirits"
	CategoryBeverages     Category = "Beverages"
	CategoryConfectionery Category = "Confectionery"
	CategoryBeers         Category = "Beers"
	CategoryMineralWaters Category = "MineralWaters"
)

// Categories returns the closed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryWines,
		CategorySpirits,
		CategoryBeverages,
		CategoryConfectionery,
		CategoryBeers,
		CategoryMineralWaters,
	}
}

// ParseCategory resolves a category by name or slug, ignoring case and separators.
func ParseCategory(raw string) (Category, bool) {
	key := normaliseCategoryKey(raw)
	if key == "" {
		return "", false
	}
	for _, c := range Categories() {
		if normaliseCategoryKey(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

// Slug returns the URL-friendly form of c.
func (c Category) Slug() string {
	switch c {
	case CategoryMineralWaters:
		return "mineral-waters"
	default:
		return strings.ToLower(string(c))
	}
}

func normaliseCategoryKey(raw string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(raw)))
}

// Product is an immutable catalog entry.
type Product struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Category       Category      `json:"category"`
	Price          pricing.Money `json:"price"`
	WholesalePrice pricing.Money `json:"wholesalePrice,omitempty"`
	StockLevel     int           `json:"stockLevel"`
	IsNew          bool          `json:"isNew"`
	IsOnPromotion  bool          `json:"isOnPromotion"`
	IsLimitedStock bool          `json:"isLimitedStock"`
	ImageRef       string        `json:"imageRef"`
	Description    string        `json:"description,omitempty"`
	Rating         float64       `json:"rating,omitempty"`
	Reviews        int           `json:"reviews,omitempty"`
}

// Featured reports whether p belongs on the home page showcase.
func (p Product) Featured() bool {
	return p.IsNew || p.IsOnPromotion
}

// ClampQuantity bounds a requested quantity to what the product page allows:
// at least 1, at most the stock level when stock is known.
func (p Product) ClampQuantity(qty int) int {
	if qty < 1 {
		qty = 1
	}
	if p.StockLevel > 0 && qty > p.StockLevel {
		qty = p.StockLevel
	}
	return qty
}
