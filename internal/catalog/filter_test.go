package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

func ids(products []Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterDefaultCriteriaKeepsOrder(t *testing.T) {
	products := SeedProducts()
	got := Filter(products, DefaultCriteria(), "")
	require.Equal(t, ids(products), ids(got))
}

func TestFilterNoCategoryEnabledMatchesNothing(t *testing.T) {
	c := DefaultCriteria()
	c.Categories = EnableCategories()
	for _, q := range []string{"", "hennessy", "zzz"} {
		require.Empty(t, Filter(SeedProducts(), c, q), "query %q", q)
	}
	c.Categories = nil
	require.Empty(t, Filter(SeedProducts(), c, ""))
}

func TestFilterQueryIsCaseInsensitiveSubstring(t *testing.T) {
	products := []Product{
		{ID: 1, Name: "Château Margaux 2018", Category: CategoryWines, Price: pricing.FromUnits(120)},
		{ID: 2, Name: "Hennessy XO", Category: CategorySpirits, Price: pricing.FromUnits(180)},
	}
	for _, q := range []string{"hennessy", "HENNESSY", "HeNnEsSy", " xo"} {
		got := Filter(products, DefaultCriteria(), q)
		require.Equal(t, []int64{2}, ids(got), "query %q", q)
	}
}

func TestFilterQueryIsNotTrimmed(t *testing.T) {
	products := []Product{{ID: 1, Name: "Rougemont", Category: CategoryWines, Price: pricing.FromUnits(20)}}
	for _, q := range []string{" rouge", "   ", "mont "} {
		require.Empty(t, Filter(products, DefaultCriteria(), q), "query %q", q)
	}
}

func TestFilterPriceRangeIsInclusive(t *testing.T) {
	products := []Product{
		{ID: 1, Name: "A", Category: CategoryWines, Price: pricing.FromUnits(95)},
		{ID: 2, Name: "B", Category: CategoryWines, Price: pricing.FromUnits(150)},
		{ID: 3, Name: "C", Category: CategoryWines, Price: pricing.FromUnits(100)},
		{ID: 4, Name: "D", Category: CategoryWines, Price: pricing.FromUnits(200)},
		{ID: 5, Name: "E", Category: CategoryWines, Price: pricing.FromUnits(201)},
	}
	c := DefaultCriteria()
	c.PriceMin = pricing.FromUnits(100)
	c.PriceMax = pricing.FromUnits(200)
	require.Equal(t, []int64{2, 3, 4}, ids(Filter(products, c, "")))
}

func TestFilterFlagTogglesAreInclusionFilters(t *testing.T) {
	products := SeedProducts()

	c := DefaultCriteria()
	c.New = true
	require.Equal(t, []int64{1, 3}, ids(Filter(products, c, "")))

	c = DefaultCriteria()
	c.Promotion = true
	require.Equal(t, []int64{2, 4, 5, 6}, ids(Filter(products, c, "")))

	c = DefaultCriteria()
	c.LimitedStock = true
	c.Promotion = true
	require.Equal(t, []int64{2, 6}, ids(Filter(products, c, "")))
}

func TestFilterCategorySubset(t *testing.T) {
	c := DefaultCriteria()
	c.Categories = EnableCategories(CategoryConfectionery, CategoryBeers)
	require.Equal(t, []int64{4, 5, 6}, ids(Filter(SeedProducts(), c, "")))
}

func TestFilterDoesNotMutateInputs(t *testing.T) {
	products := SeedProducts()
	before := append([]Product(nil), products...)
	c := DefaultCriteria()
	c.Promotion = true
	_ = Filter(products, c, "choc")
	require.Equal(t, before, products)
	require.Len(t, c.Categories, len(Categories()))
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"wines":          CategoryWines,
		"SPIRITS":        CategorySpirits,
		"mineral-waters": CategoryMineralWaters,
		"Mineral Waters": CategoryMineralWaters,
	}
	for raw, want := range cases {
		got, ok := ParseCategory(raw)
		require.True(t, ok, raw)
		require.Equal(t, want, got)
	}
	_, ok := ParseCategory("tobacco")
	require.False(t, ok)
}

func TestClampQuantity(t *testing.T) {
	p := Product{StockLevel: 8}
	require.Equal(t, 1, p.ClampQuantity(0))
	require.Equal(t, 5, p.ClampQuantity(5))
	require.Equal(t, 8, p.ClampQuantity(50))
	require.Equal(t, 50, Product{}.ClampQuantity(50))
}
