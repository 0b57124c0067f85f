package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/FBK-Manuel/wearehfg/internal/store"
	pkgconfig "github.com/FBK-Manuel/wearehfg/pkg/config"
	"github.com/FBK-Manuel/wearehfg/pkg/database"
	"github.com/FBK-Manuel/wearehfg/pkg/tracing"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	PprofCIDRs      []string      `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Storefront backend
	BackendBaseURL        string        `env:"BACKEND_BASE_URL"`
	GatewayTimeout        time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	GatewayQueryRetries   int           `env:"GATEWAY_QUERY_RETRIES" envDefault:"3"`
	GatewayBreakerEnabled bool          `env:"GATEWAY_BREAKER_ENABLED" envDefault:"false"`
	CatalogCacheTTL       time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
	SearchDebounce        time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"500ms"`

	// Session state
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"memory"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	SessionIdle   time.Duration `env:"SESSION_IDLE" envDefault:"30m"`
	SessionSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	PurgeInterval time.Duration `env:"STATE_PURGE_INTERVAL" envDefault:"1h"`
	CartDefaults  store.CartDefaults
	Redis         database.RedisConfig
	Postgres      database.PostgresConfig

	// Kafka; empty disables events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Currency
	CurrencyRatesURL string        `env:"CURRENCY_RATES_URL"`
	CurrencyBase     string        `env:"CURRENCY_BASE" envDefault:"USD"`
	CurrencyRefresh  time.Duration `env:"CURRENCY_REFRESH" envDefault:"1h"`

	// Abuse protection on form and auth routes
	FormRateLimitRPS   float64 `env:"FORM_RATE_LIMIT_RPS" envDefault:"1"`
	FormRateLimitBurst int     `env:"FORM_RATE_LIMIT_BURST" envDefault:"5"`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.BackendBaseURL == "" {
		return errors.New("BACKEND_BASE_URL is required")
	}
	u, err := url.Parse(c.BackendBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_BASE_URL must be an absolute http(s) URL, got %q", c.BackendBaseURL)
	}
	if c.GatewayQueryRetries < 0 {
		return fmt.Errorf("GATEWAY_QUERY_RETRIES must not be negative")
	}
	switch c.StorageDriver {
	case StorageMemory, StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want memory, redis or postgres)", c.StorageDriver)
	}
	if err := c.CartDefaults.Validate(); err != nil {
		return fmt.Errorf("cart defaults: %w", err)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	if c.FormRateLimitRPS < 0 || c.FormRateLimitBurst < 0 {
		return fmt.Errorf("form rate limit must not be negative")
	}
	return nil
}
