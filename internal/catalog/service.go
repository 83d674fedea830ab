package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/obs"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// Service orchestrates catalog reads on top of the product supply.
type Service struct {
	repo         Repository
	defaultPage  int
	defaultLimit int
	maxLimit     int
	now          func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Repository   Repository
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
	Now          func() time.Time
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query    string
	Criteria Criteria
	Page     int
	Limit    int
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []Product
	Total int
	Page  int
	Limit int
}

// CategoryCount is a category with the number of products it holds.
type CategoryCount struct {
	Name  Category `json:"name"`
	Slug  string   `json:"slug"`
	Count int      `json:"count"`
}

// PromotionView joins a promotion with its product for display.
type PromotionView struct {
	Promotion
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	ImageRef   string   `json:"imageRef"`
	StockLevel int      `json:"stockLevel"`
	DaysLeft   int      `json:"daysLeft"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("catalog: repository is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:         cfg.Repository,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		now:          now,
	}, nil
}

// ParseListParams normalises raw query values into strongly typed filters.
// Without any category parameter every category is enabled; category=none
// selects the empty set.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Criteria: DefaultCriteria(),
		Page:     s.defaultPage,
		Limit:    s.defaultLimit,
	}
	params.Query = strings.TrimSpace(values.Get("q"))

	if raw, ok := values["category"]; ok {
		set := make(map[Category]struct{}, len(raw))
		for _, entry := range raw {
			for _, part := range strings.Split(entry, ",") {
				part = strings.TrimSpace(part)
				if part == "" || strings.EqualFold(part, "none") {
					continue
				}
				cat, ok := ParseCategory(part)
				if !ok {
					return params, common.BadRequest("category", "unknown category "+strconv.Quote(part), nil)
				}
				set[cat] = struct{}{}
			}
		}
		params.Criteria.Categories = set
	}

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, common.BadRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}

	limit := s.defaultLimit
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return params, common.BadRequest("limit", "limit must be a positive integer", err)
		}
		limit = l
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	params.Limit = limit

	if v := strings.TrimSpace(values.Get("minPrice")); v != "" {
		m, err := parseMoney(v)
		if err != nil {
			return params, common.BadRequest("minPrice", "minPrice must be a non-negative amount", err)
		}
		params.Criteria.PriceMin = m
	}
	if v := strings.TrimSpace(values.Get("maxPrice")); v != "" {
		m, err := parseMoney(v)
		if err != nil {
			return params, common.BadRequest("maxPrice", "maxPrice must be a non-negative amount", err)
		}
		params.Criteria.PriceMax = m
	}
	if params.Criteria.PriceMin > params.Criteria.PriceMax {
		return params, common.BadRequest("price", "minPrice cannot be greater than maxPrice", fmt.Errorf("invalid price range"))
	}

	toggles := []struct {
		key string
		dst *bool
	}{
		{"new", &params.Criteria.New},
		{"promo", &params.Criteria.Promotion},
		{"limited", &params.Criteria.LimitedStock},
	}
	for _, t := range toggles {
		if v := strings.TrimSpace(values.Get(t.key)); v != "" {
			b, err := parseBool(v)
			if err != nil {
				return params, common.BadRequest(t.key, t.key+" must be true or false", err)
			}
			*t.dst = b
		}
	}
	return params, nil
}

// ListProducts filters the collection and slices out the requested page.
func (s *Service) ListProducts(_ context.Context, params ListParams) ProductListResult {
	matched := Filter(s.repo.All(), params.Criteria, params.Query)
	obs.ObserveCatalogFilter(len(matched))
	start, end := common.PageBounds(len(matched), params.Page, params.Limit)
	return ProductListResult{
		Items: matched[start:end],
		Total: len(matched),
		Page:  params.Page,
		Limit: params.Limit,
	}
}

// Featured returns the new and promoted products in catalog order.
func (s *Service) Featured(_ context.Context) []Product {
	all := s.repo.All()
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if p.Featured() {
			out = append(out, p)
		}
	}
	return out
}

// Product returns a single product.
func (s *Service) Product(_ context.Context, id int64) (Product, error) {
	p, err := s.repo.ByID(id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return Product{}, common.NotFound("", "product not found", err)
		}
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// CategoryCounts reports every category with its product count, zeroes included.
func (s *Service) CategoryCounts(_ context.Context) []CategoryCount {
	counts := make(map[Category]int)
	for _, p := range s.repo.All() {
		counts[p.Category]++
	}
	out := make([]CategoryCount, 0, len(Categories()))
	for _, c := range Categories() {
		out = append(out, CategoryCount{Name: c, Slug: c.Slug(), Count: counts[c]})
	}
	return out
}

// ActivePromotions lists running promotions joined with their products.
// Promotions pointing at unknown products are skipped.
func (s *Service) ActivePromotions(_ context.Context) []PromotionView {
	now := s.now()
	promos := s.repo.Promotions()
	out := make([]PromotionView, 0, len(promos))
	for _, promo := range promos {
		if !promo.Active(now) {
			continue
		}
		p, err := s.repo.ByID(promo.ProductID)
		if err != nil {
			continue
		}
		out = append(out, PromotionView{
			Promotion:  promo,
			Name:       p.Name,
			Category:   p.Category,
			ImageRef:   p.ImageRef,
			StockLevel: p.StockLevel,
			DaysLeft:   promo.DaysLeft(now),
		})
	}
	return out
}

func parseMoney(raw string) (pricing.Money, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount: %s", raw)
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount out of range: %s", raw)
	}
	return cents.IntPart(), nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y", "on":
		return true, nil
	case "false", "0", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", value)
	}
}
