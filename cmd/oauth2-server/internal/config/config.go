// Package config loads the oauth2-server configuration from the environment.
package config

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendValkey = "valkey"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
)

var backends = []string{BackendMemory, BackendValkey, BackendRedis, BackendBolt}

// Config holds all environment-based configuration for oauth2-server.
type Config struct {
	// Environment controls log format: "production" logs JSON.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	// MetricsAddr serves /metrics. Empty disables metrics.
	MetricsAddr     string        `env:"METRICS_ADDR" envDefault:":9090"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Issuer is the public URL of this server.
	Issuer string `env:"ISSUER" envDefault:"http://localhost:8080"`

	// Engine settings. Lifetimes are in seconds; a refresh lifetime of 0
	// issues non-expiring refresh tokens.
	AccessTokenLifetime        int64    `env:"ACCESS_TOKEN_LIFETIME" envDefault:"3600"`
	RefreshTokenLifetime       int64    `env:"REFRESH_TOKEN_LIFETIME" envDefault:"1209600"`
	Grants                     []string `env:"GRANTS" envSeparator:","`
	AlwaysIssueNewRefreshToken bool     `env:"ALWAYS_ISSUE_NEW_REFRESH_TOKEN" envDefault:"false"`
	InvalidTokenStatus         int      `env:"INVALID_TOKEN_STATUS" envDefault:"401"`
	Realm                      string   `env:"REALM" envDefault:"Service"`
	Debug                      bool     `env:"DEBUG" envDefault:"false"`

	// Rate limits. A zero rate disables the limiter.
	TokenRateLimit      float64 `env:"TOKEN_RATE_LIMIT" envDefault:"10"`
	TokenRateBurst      int     `env:"TOKEN_RATE_BURST" envDefault:"20"`
	ResourceRateLimit   float64 `env:"RESOURCE_RATE_LIMIT" envDefault:"0"`
	ResourceRateBurst   int     `env:"RESOURCE_RATE_BURST" envDefault:"0"`
	RateLimitMaxEntries int     `env:"RATE_LIMIT_MAX_ENTRIES" envDefault:"10000"`

	TrustProxy         bool `env:"TRUST_PROXY" envDefault:"false"`
	TrustedProxyHops   int  `env:"TRUSTED_PROXY_HOPS" envDefault:"1"`
	EnableAuditLogging bool `env:"AUDIT_LOGGING" envDefault:"true"`
	LogClientIPs       bool `env:"LOG_CLIENT_IPS" envDefault:"false"`

	// Storage
	StorageBackend   string        `env:"STORAGE_BACKEND" envDefault:"memory"`
	KeyPrefix        string        `env:"STORAGE_KEY_PREFIX" envDefault:"oauth2:"`
	ExpiredRetention time.Duration `env:"STORAGE_EXPIRED_RETENTION" envDefault:"24h"`

	ValkeyAddr     string `env:"VALKEY_ADDR" envDefault:"localhost:6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`
	ValkeyDB       int    `env:"VALKEY_DB" envDefault:"0"`

	RedisAddrs      []string `env:"REDIS_ADDRS" envSeparator:"," envDefault:"localhost:6379"`
	RedisMasterName string   `env:"REDIS_MASTER_NAME"`
	RedisUsername   string   `env:"REDIS_USERNAME"`
	RedisPassword   string   `env:"REDIS_PASSWORD"`
	RedisDB         int      `env:"REDIS_DB" envDefault:"0"`

	BoltPath string `env:"BOLT_PATH" envDefault:"oauth2.db"`

	// SeedFile provisions clients and users at startup (optional).
	SeedFile string `env:"SEED_FILE"`
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.Issuer = strings.TrimSuffix(cfg.Issuer, "/")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}

	issuer, err := url.Parse(c.Issuer)
	if err != nil || issuer.Host == "" || (issuer.Scheme != "http" && issuer.Scheme != "https") {
		return fmt.Errorf("ISSUER must be an absolute http(s) URL, got %q", c.Issuer)
	}

	if c.InvalidTokenStatus != http.StatusBadRequest && c.InvalidTokenStatus != http.StatusUnauthorized {
		return fmt.Errorf("INVALID_TOKEN_STATUS must be 400 or 401, got %d", c.InvalidTokenStatus)
	}

	if !slices.Contains(backends, c.StorageBackend) {
		return fmt.Errorf("STORAGE_BACKEND must be one of %s, got %q", strings.Join(backends, ", "), c.StorageBackend)
	}

	switch c.StorageBackend {
	case BackendValkey:
		if c.ValkeyAddr == "" {
			return fmt.Errorf("VALKEY_ADDR is required for the valkey backend")
		}
	case BackendRedis:
		if len(c.RedisAddrs) == 0 {
			return fmt.Errorf("REDIS_ADDRS is required for the redis backend")
		}
	case BackendBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("BOLT_PATH is required for the bolt backend")
		}
	}

	if c.TokenRateLimit < 0 || c.ResourceRateLimit < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
