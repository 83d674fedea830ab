package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	CartSessionTTL     time.Duration
	CartSessionCleanup time.Duration

	CatalogDefaultLimit int
	CatalogMaxLimit     int

	CheckoutChannelBaseURL string
	CheckoutDestination    string
	CurrencySymbol         string
	CheckoutLanguage       string

	IdempotencyTTL          time.Duration
	RateLimitCheckoutMax    int
	RateLimitCheckoutWindow time.Duration
	RateLimitAPIPerMinute   int

	BodyLimitBytes  int64
	SecurityHeaders bool
	EnableHSTS      bool

	ShutdownTimeout time.Duration

	Obs Obs
}

// Obs groups logging, metrics and tracing toggles.
type Obs struct {
	LogFormat            string
	LogLevel             string
	MetricsNamespace     string
	MetricsBucketsMS     string
	EnablePrometheus     bool
	EnableTracing        bool
	EnablePprof          bool
	TracingExporter      string
	OTLPEndpoint         string
	TracingSamplingRatio float64
	PprofBasicAuthUser   string
	PprofBasicAuthPass   string
	ReadyRedisTimeout    time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		CartSessionTTL:     parseDuration(k.String("CART_SESSION_TTL"), "72h"),
		CartSessionCleanup: parseDuration(k.String("CART_SESSION_CLEANUP"), "10m"),

		CatalogDefaultLimit: parseInt(k.String("CATALOG_DEFAULT_LIMIT"), 20),
		CatalogMaxLimit:     parseInt(k.String("CATALOG_MAX_LIMIT"), 100),

		CheckoutChannelBaseURL: valueOrDefault(k.String("CHECKOUT_CHANNEL_BASE_URL"), "https://wa.me"),
		CheckoutDestination:    valueOrDefault(k.String("CHECKOUT_DESTINATION"), "22507070707"),
		CurrencySymbol:         valueOrDefault(k.String("CURRENCY_SYMBOL"), "€"),
		CheckoutLanguage:       strings.ToLower(valueOrDefault(k.String("CHECKOUT_LANGUAGE"), "en")),

		IdempotencyTTL:          parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		RateLimitCheckoutMax:    parseInt(k.String("RATE_LIMIT_CHECKOUT_MAX"), 5),
		RateLimitCheckoutWindow: parseDuration(k.String("RATE_LIMIT_CHECKOUT_WINDOW"), "1m"),
		RateLimitAPIPerMinute:   parseInt(k.String("RATE_LIMIT_API_PER_MINUTE"), 300),

		BodyLimitBytes:  int64(parseInt(k.String("BODY_LIMIT_BYTES"), 64*1024)),
		SecurityHeaders: parseBool(k.String("SECURITY_HEADERS"), true),
		EnableHSTS:      parseBool(k.String("SECURITY_HSTS"), false),

		ShutdownTimeout: parseDuration(k.String("SHUTDOWN_TIMEOUT"), "15s"),

		Obs: Obs{
			LogFormat:            valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:             valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace:     valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "boutique"),
			MetricsBucketsMS:     k.String("OBS_METRICS_BUCKETS_MS"),
			EnablePrometheus:     parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
			EnableTracing:        parseBool(k.String("OBS_ENABLE_TRACING"), false),
			EnablePprof:          parseBool(k.String("OBS_ENABLE_PPROF"), false),
			TracingExporter:      valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:         strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			TracingSamplingRatio: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
			PprofBasicAuthUser:   strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
			PprofBasicAuthPass:   strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_PASS")),
			ReadyRedisTimeout:    time.Duration(parseInt(k.String("HEALTH_READY_REDIS_TIMEOUT_MS"), 300)) * time.Millisecond,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.RedisURL != "" {
		if _, err := url.Parse(c.RedisURL); err != nil {
			errs = append(errs, fmt.Errorf("REDIS_URL: %w", err))
		}
	}
	if c.CatalogDefaultLimit < 1 || c.CatalogMaxLimit < 1 {
		errs = append(errs, errors.New("CATALOG_DEFAULT_LIMIT and CATALOG_MAX_LIMIT must be positive"))
	}
	if c.CatalogDefaultLimit > c.CatalogMaxLimit {
		errs = append(errs, errors.New("CATALOG_DEFAULT_LIMIT cannot exceed CATALOG_MAX_LIMIT"))
	}
	if _, err := strconv.ParseUint(c.CheckoutDestination, 10, 64); err != nil {
		errs = append(errs, errors.New("CHECKOUT_DESTINATION must be digits only (country code without +)"))
	}
	if c.CheckoutLanguage != "en" && c.CheckoutLanguage != "fr" {
		errs = append(errs, errors.New("CHECKOUT_LANGUAGE must be en or fr"))
	}
	if u, err := url.Parse(c.CheckoutChannelBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("CHECKOUT_CHANNEL_BASE_URL must be an absolute URL"))
	}
	return errors.Join(errs...)
}

// RedisEnabled reports whether a Redis URL was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
