package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/events"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/obs"
)

// SubscribeRequest is the payload of POST /newsletter/subscriptions.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Subscription reports the outcome of a sign-up.
type Subscription struct {
	Email             string `json:"email"`
	AlreadySubscribed bool   `json:"alreadySubscribed"`
}

// Service handles newsletter sign-ups.
type Service struct {
	store     Store
	validator *common.Validator
	events    *events.Bus
	logger    zerolog.Logger
	now       func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store     Store
	Validator *common.Validator
	Events    *events.Bus
	Logger    zerolog.Logger
	Now       func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("newsletter: store is required")
	}
	v := cfg.Validator
	if v == nil {
		v = common.NewValidator()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{store: cfg.Store, validator: v, events: cfg.Events, logger: cfg.Logger, now: now}, nil
}

// Subscribe validates and records the address. Subscribing twice is not an error.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (Subscription, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		obs.CountNewsletterSubscription("invalid")
		return Subscription{}, err
	}
	added, err := s.store.Add(ctx, req.Email, s.now())
	if err != nil {
		obs.CountNewsletterSubscription("error")
		return Subscription{}, fmt.Errorf("newsletter: add subscriber: %w", err)
	}
	if !added {
		obs.CountNewsletterSubscription("duplicate")
		return Subscription{Email: req.Email, AlreadySubscribed: true}, nil
	}
	obs.CountNewsletterSubscription("created")
	s.refreshSubscribers(ctx)
	if s.events != nil {
		if _, err := s.events.Emit(ctx, events.TopicNewsletterSubscribed, req.Email, map[string]string{"email": req.Email}); err != nil {
			s.logger.Warn().Err(err).Msg("emit newsletter event")
		}
	}
	return Subscription{Email: req.Email}, nil
}

func (s *Service) refreshSubscribers(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("count newsletter subscribers")
		return
	}
	obs.SetNewsletterSubscribers(n)
}
