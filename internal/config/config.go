package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings, populated from the environment.
// A .env file is loaded by main before this is processed.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	DatabaseURL string `envconfig:"DB_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	// TokenCacheTTL bounds how long a verified credential may be served
	// from cache without re-validating the signature.
	TokenCacheTTL time.Duration `envconfig:"TOKEN_CACHE_TTL" default:"10m"`

	// PresenceSweepDelay is how long after startup the stale-presence
	// reconciliation task runs.
	PresenceSweepDelay time.Duration `envconfig:"PRESENCE_SWEEP_DELAY" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
