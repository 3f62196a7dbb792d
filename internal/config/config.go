package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/muhammadmasoud/amazon-clone-sub000/pkg/config"
)

// Session backends.
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// Config holds all configuration for the storefront client core.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// Backend REST API
	APIBaseURL        string        `env:"STOREFRONT_API_BASE_URL" envDefault:"http://127.0.0.1:8000/api"`
	HTTPTimeout       time.Duration `env:"STOREFRONT_HTTP_TIMEOUT" envDefault:"15s"`
	HTTPMaxRetries    int           `env:"STOREFRONT_HTTP_MAX_RETRIES" envDefault:"2"`
	RequestsPerSecond float64       `env:"STOREFRONT_REQUESTS_PER_SECOND" envDefault:"20"`
	RequestBurst      int           `env:"STOREFRONT_REQUEST_BURST" envDefault:"10"`
	BreakerTimeout    time.Duration `env:"STOREFRONT_BREAKER_TIMEOUT" envDefault:"15s"`
	PublicPaths       []string      `env:"STOREFRONT_PUBLIC_PATHS" envSeparator:","`

	// View server
	HTTPPort    int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`
	CORSOrigins []string `env:"STOREFRONT_CORS_ORIGINS" envDefault:"http://localhost:5173,http://127.0.0.1:5173" envSeparator:","`

	// Persisted credential
	SessionBackend string `env:"STOREFRONT_SESSION_BACKEND" envDefault:"file"`
	SessionFile    string `env:"STOREFRONT_SESSION_FILE" envDefault:".storefront/session.json"`
	SessionKey     string `env:"STOREFRONT_SESSION_KEY" envDefault:"storefront:session:token"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass      string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`

	// Checkout
	SubmitCooldown time.Duration `env:"STOREFRONT_SUBMIT_COOLDOWN" envDefault:"3s"`

	// Kafka (empty disables event publishing)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from the process environment.
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

// LoadFrom reads configuration from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environ); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EventsEnabled reports whether a Kafka producer should be started.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid STOREFRONT_API_BASE_URL: %q", c.APIBaseURL)
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("STOREFRONT_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.HTTPMaxRetries < 0 {
		return fmt.Errorf("STOREFRONT_HTTP_MAX_RETRIES must not be negative, got %d", c.HTTPMaxRetries)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("STOREFRONT_REQUESTS_PER_SECOND must not be negative, got %v", c.RequestsPerSecond)
	}
	if c.SubmitCooldown < 0 {
		return fmt.Errorf("STOREFRONT_SUBMIT_COOLDOWN must not be negative, got %s", c.SubmitCooldown)
	}
	switch c.SessionBackend {
	case SessionBackendFile:
		if c.SessionFile == "" {
			return fmt.Errorf("STOREFRONT_SESSION_FILE is required for the file session backend")
		}
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown STOREFRONT_SESSION_BACKEND %q (want file or redis)", c.SessionBackend)
	}
	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.OTelSampleRate)
	}
	return nil
}
