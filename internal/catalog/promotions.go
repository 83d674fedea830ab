package catalog

import (
	"math"
	"time"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// Promotion is a time-boxed price cut on one product.
type Promotion struct {
	ProductID       int64         `json:"productId"`
	OriginalPrice   pricing.Money `json:"originalPrice"`
	DiscountedPrice pricing.Money `json:"discountedPrice"`
	DiscountPercent int           `json:"discountPercent"`
	EndsOn          time.Time     `json:"endsOn"`
}

// DaysLeft rounds the time remaining until EndsOn up to whole days. It is zero
// or negative once the promotion ended.
func (p Promotion) DaysLeft(now time.Time) int {
	remaining := p.EndsOn.Sub(now)
	return int(math.Ceil(remaining.Hours() / 24))
}

// Active reports whether the promotion still runs at now.
func (p Promotion) Active(now time.Time) bool {
	return p.DaysLeft(now) > 0
}
