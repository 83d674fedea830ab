package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/cart"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/events"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/obs"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// ErrCartEmpty is returned when checking out a cart without lines.
var ErrCartEmpty = errors.New("cart is empty")

// Result is what the shopper's browser needs to open the hand-off link.
type Result struct {
	Message           string        `json:"message"`
	URL               string        `json:"url"`
	TotalCount        int           `json:"totalCount"`
	TotalPrice        pricing.Money `json:"totalPrice"`
	TotalPriceDisplay string        `json:"totalPriceDisplay"`
}

// Service turns a cart into an order message for the shop manager.
type Service struct {
	baseURL     string
	destination string
	currency    string
	labels      Labels
	validator   *common.Validator
	events      *events.Bus
	logger      zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	ChannelBaseURL string
	Destination    string
	CurrencySymbol string
	Language       string
	Validator      *common.Validator
	Events         *events.Bus
	Logger         zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if strings.TrimSpace(cfg.Destination) == "" {
		return nil, errors.New("checkout: destination is required")
	}
	base := strings.TrimSpace(cfg.ChannelBaseURL)
	if base == "" {
		base = "https://wa.me"
	}
	currency := cfg.CurrencySymbol
	if currency == "" {
		currency = "€"
	}
	labels, ok := LabelsFor(cfg.Language)
	if !ok {
		return nil, fmt.Errorf("checkout: unsupported summary language %q", cfg.Language)
	}
	v := cfg.Validator
	if v == nil {
		v = common.NewValidator()
	}
	return &Service{
		baseURL:     base,
		destination: strings.TrimSpace(cfg.Destination),
		currency:    currency,
		labels:      labels,
		validator:   v,
		events:      cfg.Events,
		logger:      cfg.Logger,
	}, nil
}

// Checkout validates the customer, takes the cart contents, builds the order
// message and hand-off link, and leaves the cart empty. An invalid customer or
// an empty cart leaves the cart untouched.
func (s *Service) Checkout(ctx context.Context, cartID string, store *cart.Store, customer Customer) (Result, error) {
	if store == nil {
		return Result{}, errors.New("checkout: cart is required")
	}
	customer = customer.Normalize()
	if err := customer.Validate(s.validator); err != nil {
		obs.CountCheckout(string(customer.Mode), "invalid")
		return Result{}, err
	}
	snap := store.Take()
	if len(snap.Lines) == 0 {
		obs.CountCheckout(string(customer.Mode), "empty")
		return Result{}, emptyCartError()
	}

	message := Summary(customer, snap, s.currency, s.labels)
	res := Result{
		Message:           message,
		URL:               HandOffURL(s.baseURL, s.destination, message),
		TotalCount:        snap.TotalCount,
		TotalPrice:        snap.TotalPrice,
		TotalPriceDisplay: pricing.Format(snap.TotalPrice, s.currency),
	}
	if s.events != nil {
		payload := map[string]any{
			"mode":       customer.Mode,
			"lines":      len(snap.Lines),
			"totalCount": snap.TotalCount,
			"totalPrice": snap.TotalPrice,
		}
		if _, err := s.events.Emit(ctx, events.TopicCheckoutHandedOff, cartID, payload); err != nil {
			s.logger.Warn().Err(err).Str("cart_id", cartID).Msg("emit checkout event")
		}
	}
	obs.CountCheckout(string(customer.Mode), "handed_off")
	return res, nil
}

func emptyCartError() error {
	return common.Conflict("CART_EMPTY", "cart is empty", ErrCartEmpty)
}
