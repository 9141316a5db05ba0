package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Rate window backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Env                  string        `mapstructure:"ENV"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `mapstructure:"LOG_LEVEL"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `mapstructure:"LOG_FORMAT"`            // Log format (json, text) (default: json)
	Port                 int           `mapstructure:"PORT"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `mapstructure:"HOUSEKEEPING_INTERVAL"` // Housekeeping interval (default: 1h)
	DatabaseFile         string        `mapstructure:"AUTH_DATABASE_FILE"`    // Path to SQLite database file (default: ./auth.db)
	TrustProxyHeaders    bool          `mapstructure:"TRUST_PROXY_HEADERS"`   // Use X-Forwarded-For for the client address (default: false)

	Issuer        string        `mapstructure:"AUTH_ISSUER"`         // iss claim (default: gatekeeper)
	Audience      string        `mapstructure:"AUTH_AUDIENCE"`       // aud claim, empty disables the check
	AccessSecret  string        `mapstructure:"AUTH_ACCESS_SECRET"`  // HMAC key for access tokens
	RefreshSecret string        `mapstructure:"AUTH_REFRESH_SECRET"` // HMAC key for refresh tokens, must differ from AccessSecret
	AccessTTL     time.Duration `mapstructure:"AUTH_ACCESS_TTL"`     // default: 15m
	RefreshTTL    time.Duration `mapstructure:"AUTH_REFRESH_TTL"`    // default: 168h
	HashCost      int           `mapstructure:"AUTH_HASH_COST"`      // bcrypt cost (default: 10)

	BootstrapEmail    string `mapstructure:"AUTH_BOOTSTRAP_EMAIL"`    // Optional: first admin, created when no user exists
	BootstrapPassword string `mapstructure:"AUTH_BOOTSTRAP_PASSWORD"` // Optional: first admin password

	RateLimitWindow      time.Duration `mapstructure:"RATELIMIT_WINDOW"`       // default: 60s
	RateLimitMaxRequests int           `mapstructure:"RATELIMIT_MAX_REQUESTS"` // default budget per window (default: 30)
	RateLimitSignInMax   int           `mapstructure:"RATELIMIT_SIGNIN_MAX"`   // sign-in budget per window (default: 3)
	RateLimitPermissive  bool          `mapstructure:"RATELIMIT_PERMISSIVE"`   // Disable limiting, dev only (default: false)
	RateLimitBackend     string        `mapstructure:"RATELIMIT_BACKEND"`      // sqlite or redis (default: sqlite)
	RateLimitRoutesFile  string        `mapstructure:"RATELIMIT_ROUTES_FILE"`  // Optional: YAML per-route overrides

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	BlacklistCacheTTL time.Duration `mapstructure:"BLACKLIST_CACHE_TTL"` // In-process cache of revoked token ids (default: 5m)
}

// LoadConfig reads .env (if present) and the environment. Environment
// variables win over .env.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Every key needs a default, viper only unmarshals keys it knows about.
func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")
	v.SetDefault("HOUSEKEEPING_INTERVAL", "1h")
	v.SetDefault("AUTH_DATABASE_FILE", "auth.db")
	v.SetDefault("TRUST_PROXY_HEADERS", false)

	v.SetDefault("AUTH_ISSUER", "gatekeeper")
	v.SetDefault("AUTH_AUDIENCE", "")
	v.SetDefault("AUTH_ACCESS_SECRET", "")
	v.SetDefault("AUTH_REFRESH_SECRET", "")
	v.SetDefault("AUTH_ACCESS_TTL", "15m")
	v.SetDefault("AUTH_REFRESH_TTL", "168h") // 7d
	v.SetDefault("AUTH_HASH_COST", 10)

	v.SetDefault("AUTH_BOOTSTRAP_EMAIL", "")
	v.SetDefault("AUTH_BOOTSTRAP_PASSWORD", "")

	v.SetDefault("RATELIMIT_WINDOW", "60s")
	v.SetDefault("RATELIMIT_MAX_REQUESTS", 30)
	v.SetDefault("RATELIMIT_SIGNIN_MAX", 3)
	v.SetDefault("RATELIMIT_PERMISSIVE", false)
	v.SetDefault("RATELIMIT_BACKEND", BackendSQLite)
	v.SetDefault("RATELIMIT_ROUTES_FILE", "")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("BLACKLIST_CACHE_TTL", "5m")
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool { return c.Env == "dev" }

func (c *Config) validate() error {
	c.RateLimitBackend = strings.ToLower(strings.TrimSpace(c.RateLimitBackend))
	switch c.RateLimitBackend {
	case BackendSQLite:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("config: REDIS_ADDR must be set when RATELIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("config: unknown RATELIMIT_BACKEND %q", c.RateLimitBackend)
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("config: AUTH_ACCESS_TTL and AUTH_REFRESH_TTL must be positive")
	}
	if c.RateLimitWindow <= 0 || c.RateLimitMaxRequests <= 0 || c.RateLimitSignInMax <= 0 {
		return errors.New("config: rate limit window and budgets must be positive")
	}
	if c.HashCost < 4 || c.HashCost > 31 {
		return errors.New("config: AUTH_HASH_COST must be between 4 and 31")
	}

	if c.IsDev() {
		return nil
	}
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("config: AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET are required outside dev")
	}
	if c.RateLimitPermissive {
		return errors.New("config: RATELIMIT_PERMISSIVE must not be set outside dev")
	}
	return nil
}
