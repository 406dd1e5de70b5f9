package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "CLOTHSHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv       = "CLOTHSHOP_APP_ENV"
	EnvPort         = "CLOTHSHOP_APP_PORT"
	EnvDBDSN        = "CLOTHSHOP_DB_DSN"
	EnvRedisURL     = "CLOTHSHOP_REDIS_URL"
	EnvJWTSecret    = "CLOTHSHOP_JWT_SECRET"
	EnvStoreBaseURL = "CLOTHSHOP_STORE_API_BASE_URL"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	StoreAPI StoreAPIConfig
	Pricing  PricingConfig
	Checkout CheckoutConfig
	Stripe   StripeConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.StoreAPI.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CLOTHSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"CLOTHSHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CLOTHSHOP_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CLOTHSHOP_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CLOTHSHOP_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"CLOTHSHOP_AUTO_MIGRATE" default:"false"`

	// CORSOrigins is a comma separated list of storefront origins.
	CORSOrigins []string `envconfig:"CLOTHSHOP_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN             string        `envconfig:"CLOTHSHOP_DB_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"CLOTHSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLOTHSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLOTHSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLOTHSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"CLOTHSHOP_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLOTHSHOP_REDIS_URL"`
	Address      string        `envconfig:"CLOTHSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"CLOTHSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLOTHSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLOTHSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLOTHSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLOTHSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLOTHSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLOTHSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
	SlowCommand  time.Duration `envconfig:"CLOTHSHOP_REDIS_SLOW_COMMAND" default:"100ms"`
}

// JWTConfig verifies access tokens issued by the store backend. Leeway absorbs
// clock skew between the two services.
type JWTConfig struct {
	Secret string        `envconfig:"CLOTHSHOP_JWT_SECRET" required:"true"`
	Issuer string        `envconfig:"CLOTHSHOP_JWT_ISSUER"`
	Leeway time.Duration `envconfig:"CLOTHSHOP_JWT_LEEWAY" default:"30s"`
}

type StoreAPIConfig struct {
	BaseURL string        `envconfig:"CLOTHSHOP_STORE_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"CLOTHSHOP_STORE_API_TIMEOUT" default:"10s"`
}

func (s StoreAPIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(s.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvStoreBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvStoreBaseURL)
	}
	return nil
}

// PricingConfig feeds the single price calculator shared by display and charge paths.
type PricingConfig struct {
	DiscountThreshold decimal.Decimal `envconfig:"CLOTHSHOP_PRICING_DISCOUNT_THRESHOLD" default:"1000"`
	DiscountAmount    decimal.Decimal `envconfig:"CLOTHSHOP_PRICING_DISCOUNT_AMOUNT" default:"100"`
	ShippingFee       decimal.Decimal `envconfig:"CLOTHSHOP_PRICING_SHIPPING_FEE" default:"100"`
	TaxRate           decimal.Decimal `envconfig:"CLOTHSHOP_PRICING_TAX_RATE" default:"0.05"`
	Currency          string          `envconfig:"CLOTHSHOP_PRICING_CURRENCY" default:"inr"`
}

func (p PricingConfig) validate() error {
	for name, value := range map[string]decimal.Decimal{
		"discount threshold": p.DiscountThreshold,
		"discount amount":    p.DiscountAmount,
		"shipping fee":       p.ShippingFee,
		"tax rate":           p.TaxRate,
	} {
		if value.IsNegative() {
			return fmt.Errorf("pricing %s must not be negative", name)
		}
	}
	if p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("pricing tax rate must be a fraction, got %s", p.TaxRate)
	}
	return nil
}

type CheckoutConfig struct {
	LockTTL        time.Duration `envconfig:"CLOTHSHOP_CHECKOUT_LOCK_TTL" default:"30s"`
	IdempotencyTTL time.Duration `envconfig:"CLOTHSHOP_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type StripeConfig struct {
	APIKey     string        `envconfig:"CLOTHSHOP_STRIPE_API_KEY"`
	Env        string        `envconfig:"CLOTHSHOP_STRIPE_ENV" default:"test"`
	Timeout    time.Duration `envconfig:"CLOTHSHOP_STRIPE_TIMEOUT" default:"20s"`
	MaxRetries int64         `envconfig:"CLOTHSHOP_STRIPE_MAX_RETRIES" default:"2"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"CLOTHSHOP_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	CheckoutTopic string `envconfig:"CLOTHSHOP_PUBSUB_CHECKOUT_TOPIC" default:"checkout-events"`
}

// Enabled reports whether checkout events should be published.
func (p PubSubConfig) Enabled(gcp GCPConfig) bool {
	return strings.TrimSpace(gcp.ProjectID) != "" && strings.TrimSpace(p.CheckoutTopic) != ""
}
