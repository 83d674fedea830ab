package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/cart"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/catalog"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/checkout"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/common"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/config"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/events"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/health"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/newsletter"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/obs"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/ratelimit"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/resilience"
	"github.com/Pelestrom/vin-gros-boutique-ci/internal/security"
)

// App owns the shopper sessions and the services built on top of them. It is
// the single place where cart state lives.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Redis      *redis.Client
	Sessions   *cart.Sessions
	Catalog    *catalog.Service
	Checkout   *checkout.Service
	Newsletter *newsletter.Service
	Events     *events.Bus
	Validator  *common.Validator

	httpMetrics *obs.HTTPMetrics
	registry    prometheus.Gatherer
}

// Options carries the optional collaborators of New.
type Options struct {
	// Redis enables idempotency keys, shared rate limits, the Redis newsletter
	// store and the event streams. Nil runs fully in memory.
	Redis *redis.Client
	// Registry receives metrics. Nil uses the Prometheus default registry.
	Registry *prometheus.Registry
	// Repository overrides the seeded product supply.
	Repository catalog.Repository
	Now        func() time.Time
}

// New wires the application from configuration.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}
	var httpMetrics *obs.HTTPMetrics
	if cfg.Obs.EnablePrometheus {
		obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, registerer)
		resilience.MustRegisterMetrics(cfg.Obs.MetricsNamespace, registerer)
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBucketsMS), registerer)
	}

	validate := common.NewValidator()

	bus := &events.Bus{
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger.With().Str("component", "events").Logger()}},
		Now:       opts.Now,
	}
	if opts.Redis != nil {
		bus.Store = events.GuardedStore{
			Store:   events.RedisStreamStore{Client: opts.Redis, Prefix: "boutique:events"},
			Breaker: resilience.NewBreaker(resilience.BreakerConfig{
				Target:      "redis_events",
				MinRequests: 5,
				OpenFor:     30 * time.Second,
				Logger:      logger,
			}),
		}
	}

	repo := opts.Repository
	if repo == nil {
		repo = catalog.NewStaticRepository(catalog.SeedProducts(), catalog.SeedPromotions())
	}
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Repository:   repo,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
		Now:          opts.Now,
	})
	if err != nil {
		return nil, err
	}

	checkoutSvc, err := checkout.NewService(checkout.ServiceConfig{
		ChannelBaseURL: cfg.CheckoutChannelBaseURL,
		Destination:    cfg.CheckoutDestination,
		CurrencySymbol: cfg.CurrencySymbol,
		Language:       cfg.CheckoutLanguage,
		Validator:      validate,
		Events:         bus,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	var subscribers newsletter.Store = newsletter.NewMemoryStore()
	if opts.Redis != nil {
		subscribers = newsletter.RedisStore{Client: opts.Redis, Prefix: "boutique:newsletter"}
	}
	newsletterSvc, err := newsletter.NewService(newsletter.ServiceConfig{
		Store:     subscribers,
		Validator: validate,
		Events:    bus,
		Logger:    logger,
		Now:       opts.Now,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		Redis:       opts.Redis,
		Sessions:    cart.NewSessions(cfg.CartSessionTTL, cfg.CartSessionCleanup),
		Catalog:     catalogSvc,
		Checkout:    checkoutSvc,
		Newsletter:  newsletterSvc,
		Events:      bus,
		Validator:   validate,
		httpMetrics: httpMetrics,
		registry:    gatherer,
	}, nil
}

// Router builds the HTTP handler tree.
func (a *App) Router() http.Handler {
	cfg := a.Config

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: a.Catalog})
	cartHandler := cart.NewHandler(cart.HandlerConfig{
		Sessions:       a.Sessions,
		Products:       a.Catalog,
		Validator:      a.Validator,
		Events:         a.Events,
		Logger:         a.Logger,
		CurrencySymbol: cfg.CurrencySymbol,
	})
	checkoutHandler := checkout.NewHandler(checkout.HandlerConfig{Service: a.Checkout, Sessions: a.Sessions})
	newsletterHandler := newsletter.NewHandler(newsletter.HandlerConfig{Service: a.Newsletter})

	idem := common.Idem{R: a.Redis, TTL: cfg.IdempotencyTTL}
	onLimitErr := func(err error) { a.Logger.Warn().Err(err).Msg("rate limiter unavailable") }

	var apiAllower ratelimit.Allower = ratelimit.NewMemoryLimiter("api")
	if a.Redis != nil {
		shared, err := ratelimit.NewRedisLimiter(a.Redis, "boutique:ratelimit:api")
		if err != nil {
			a.Logger.Warn().Err(err).Msg("shared api limiter unavailable; using in-memory")
		} else {
			apiAllower = shared
		}
	}
	apiLimiter := ratelimit.Handler{
		Limiter: apiAllower,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP("api:"), Window: time.Minute, Max: cfg.RateLimitAPIPerMinute},
		OnError: onLimitErr,
	}
	var checkoutAllower ratelimit.Allower = ratelimit.NewMemoryLimiter("checkout")
	if a.Redis != nil {
		checkoutAllower = ratelimit.SlidingWindow{Client: a.Redis, Prefix: "boutique:ratelimit:"}
	}
	checkoutLimiter := ratelimit.Handler{
		Limiter: checkoutAllower,
		Config:  ratelimit.Config{Key: ratelimit.ByCart("checkout:"), Window: cfg.RateLimitCheckoutWindow, Max: cfg.RateLimitCheckoutMax},
		OnError: onLimitErr,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Obs.EnableTracing {
		r.Use(obs.SpanRouteMiddleware)
	}
	if a.httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: a.httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: a.Logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.EnableHSTS}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Total-Count", "X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(gziphandler.GzipHandler)

	if a.httpMetrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	if cfg.Obs.EnablePprof {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.Obs.PprofBasicAuthUser, cfg.Obs.PprofBasicAuthPass))
	}

	healthHandler := health.Handler{
		Checker:      health.RedisChecker{Client: a.Redis},
		RedisTimeout: cfg.Obs.ReadyRedisTimeout,
		Sessions:     a.Sessions.Len,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(apiLimiter.Middleware)
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

		v.Get("/categories", catalogHandler.Categories)
		v.Get("/promotions", catalogHandler.Promotions)
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/featured", catalogHandler.Featured)
		v.Get("/products/{id}", catalogHandler.ProductDetail)

		v.Post("/carts", cartHandler.Create)
		v.Route("/carts/{cartID}", func(c chi.Router) {
			c.Use(cart.SessionContext)
			c.Get("/", cartHandler.Get)
			c.Put("/", cartHandler.Resume)
			c.Delete("/", cartHandler.Clear)
			c.Delete("/session", cartHandler.End)
			c.Post("/items", cartHandler.AddItem)
			c.Patch("/items/{productID}", cartHandler.UpdateItem)
			c.Delete("/items/{productID}", cartHandler.RemoveItem)
			c.With(checkoutLimiter.Middleware, idem.Middleware).Post("/checkout", checkoutHandler.Checkout)
		})

		v.Post("/newsletter/subscriptions", newsletterHandler.Subscribe)
	})

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
