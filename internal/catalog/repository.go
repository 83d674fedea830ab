package catalog

import (
	"errors"
	"time"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// ErrProductNotFound is returned when no product carries the requested id.
var ErrProductNotFound = errors.New("product not found")

// Repository supplies the read-only product collection.
type Repository interface {
	All() []Product
	ByID(id int64) (Product, error)
	Promotions() []Promotion
}

// StaticRepository serves a fixed, ordered product collection.
type StaticRepository struct {
	products   []Product
	byID       map[int64]int
	promotions []Promotion
}

// NewStaticRepository indexes products and promotions. The slices are copied.
func NewStaticRepository(products []Product, promotions []Promotion) *StaticRepository {
	r := &StaticRepository{
		products:   append([]Product(nil), products...),
		byID:       make(map[int64]int, len(products)),
		promotions: append([]Promotion(nil), promotions...),
	}
	for i, p := range r.products {
		r.byID[p.ID] = i
	}
	return r
}

// All returns a copy of the collection in catalog order.
func (r *StaticRepository) All() []Product {
	return append([]Product(nil), r.products...)
}

// ByID looks up a product.
func (r *StaticRepository) ByID(id int64) (Product, error) {
	i, ok := r.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return r.products[i], nil
}

// Promotions returns a copy of the promotion records.
func (r *StaticRepository) Promotions() []Promotion {
	return append([]Promotion(nil), r.promotions...)
}

const placeholderImage = "/lovable-uploads/3112be4c-c1f6-41f4-8eea-ea9ebc741373.png"

// SeedProducts is the storefront's hardcoded assortment.
func SeedProducts() []Product {
	return []Product{
		{
			ID:             1,
			Name:           "Château Margaux 2018",
			Category:       CategoryWines,
			Price:          pricing.FromUnits(120),
			WholesalePrice: pricing.FromUnits(95),
			StockLevel:     15,
			IsNew:          true,
			IsLimitedStock: true,
			ImageRef:       placeholderImage,
			Description:    "An exceptional Bordeaux red with a complex bouquet of black fruit, spice and oak, elegant tannins and a remarkable finish.",
			Rating:         4.8,
			Reviews:        93,
		},
		{
			ID:             2,
			Name:           "Hennessy XO",
			Category:       CategorySpirits,
			Price:          pricing.FromUnits(180),
			WholesalePrice: pricing.FromUnits(150),
			StockLevel:     8,
			IsOnPromotion:  true,
			IsLimitedStock: true,
			ImageRef:       placeholderImage,
			Description:    "A cognac aged for more than ten years, rich with candied fruit, spice and chocolate, smooth with a lasting finish.",
			Rating:         4.9,
			Reviews:        85,
		},
		{
			ID:             3,
			Name:           "Dom Pérignon Vintage",
			Category:       CategoryWines,
			Price:          pricing.FromUnits(210),
			WholesalePrice: pricing.FromUnits(175),
			StockLevel:     20,
			IsNew:          true,
			ImageRef:       placeholderImage,
		},
		{
			ID:             4,
			Name:           "Assortiment Chocolats Fins",
			Category:       CategoryConfectionery,
			Price:          pricing.FromUnits(45),
			WholesalePrice: pricing.FromUnits(35),
			StockLevel:     30,
			IsOnPromotion:  true,
			ImageRef:       placeholderImage,
		},
		{
			ID:             5,
			Name:           "Corona Extra Pack",
			Category:       CategoryBeers,
			Price:          pricing.FromUnits(35),
			WholesalePrice: pricing.FromUnits(30),
			StockLevel:     25,
			IsOnPromotion:  true,
			ImageRef:       placeholderImage,
		},
		{
			ID:             6,
			Name:           "Chocolats Assortis",
			Category:       CategoryConfectionery,
			Price:          pricing.FromUnits(30),
			WholesalePrice: pricing.FromUnits(25),
			StockLevel:     10,
			IsOnPromotion:  true,
			IsLimitedStock: true,
			ImageRef:       placeholderImage,
		},
	}
}

// SeedPromotions lists the running offers shown on the promotions page.
func SeedPromotions() []Promotion {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	return []Promotion{
		{ProductID: 1, OriginalPrice: pricing.FromUnits(150), DiscountedPrice: pricing.FromUnits(95), DiscountPercent: 20, EndsOn: day(2026, time.December, 31)},
		{ProductID: 2, OriginalPrice: pricing.FromUnits(220), DiscountedPrice: pricing.FromUnits(150), DiscountPercent: 18, EndsOn: day(2026, time.December, 31)},
		{ProductID: 5, OriginalPrice: pricing.FromUnits(45), DiscountedPrice: pricing.FromUnits(35), DiscountPercent: 22, EndsOn: day(2027, time.January, 15)},
		{ProductID: 6, OriginalPrice: pricing.FromUnits(40), DiscountedPrice: pricing.FromUnits(30), DiscountPercent: 25, EndsOn: day(2026, time.November, 30)},
	}
}
