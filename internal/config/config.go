package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Carlos85Carvalho/luni-final-sub000/pkg/config"
)

// Config holds all configuration for the point-of-sale service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"POS_HTTP_PORT" envDefault:"8010"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"salon"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"salon_secret"`
	PostgresDB   string `env:"POS_DB_NAME" envDefault:"pos_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_MINUTES" envDefault:"30"`
	SlowQueryThresholdMs  int   `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Redis (sale counters and pending-sale snapshots)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS (front-of-house web client)
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Loyalty program
	LoyaltyPointsPerUnit   float64 `env:"LOYALTY_POINTS_PER_UNIT" envDefault:"1"`
	LoyaltyMinimumCents    int64   `env:"LOYALTY_MINIMUM_CENTS" envDefault:"5000"`
	LoyaltyCashbackPercent float64 `env:"LOYALTY_CASHBACK_PERCENT" envDefault:"0"`

	// Receipts
	ReceiptHeader      string `env:"RECEIPT_HEADER" envDefault:"Salão"`
	ReceiptRendererURL string `env:"RECEIPT_RENDERER_URL" envDefault:""`

	// Sessions
	SessionIdleTTLMins    int `env:"SESSION_IDLE_TTL_MINUTES" envDefault:"120"`
	SessionSweepEveryMins int `env:"SESSION_SWEEP_EVERY_MINUTES" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load pos config: %w", err)
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
	if c.LoyaltyPointsPerUnit < 0 {
		return fmt.Errorf("loyalty points per unit must not be negative: %f", c.LoyaltyPointsPerUnit)
	}
	if c.LoyaltyCashbackPercent < 0 || c.LoyaltyCashbackPercent > 100 {
		return fmt.Errorf("loyalty cashback percent out of range: %f", c.LoyaltyCashbackPercent)
	}
	if c.SessionIdleTTLMins < 1 {
		return fmt.Errorf("session idle TTL must be at least one minute: %d", c.SessionIdleTTLMins)
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// SessionIdleTTL returns the idle TTL as a duration.
func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleTTLMins) * time.Minute
}

// SessionSweepInterval returns the janitor interval as a duration.
func (c *Config) SessionSweepInterval() time.Duration {
	return time.Duration(c.SessionSweepEveryMins) * time.Minute
}
