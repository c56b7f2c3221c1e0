package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL" envDefault:""`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// PublicBaseURL is prepended to /tarot-reading/{code} when handing
	// absolute share URLs to the consultant. Empty keeps URLs relative.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:""`

	// LinkCacheTTLSeconds bounds staleness of cached access-code lookups.
	// Mutations invalidate eagerly; the TTL is a backstop.
	LinkCacheTTLSeconds int `env:"LINK_CACHE_TTL_SECONDS" envDefault:"300"`

	// RetentionDays controls how long links stay resolvable after they
	// expire. Within the window an expired code still reports EXPIRED
	// rather than NOT_FOUND. Zero disables the purge entirely, so expired
	// links persist until deleted explicitly.
	RetentionDays int `env:"LINK_RETENTION_DAYS" envDefault:"90"`

	// ClearExpiryOnActivate makes reactivating a link drop a stale expiry
	// so the link becomes immediately viewable again. Off by default: the
	// reactivated link keeps its expiry and may still read as expired.
	ClearExpiryOnActivate bool `env:"CLEAR_EXPIRY_ON_ACTIVATE" envDefault:"false"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) LinkCacheTTL() time.Duration {
	return time.Duration(c.LinkCacheTTLSeconds) * time.Second
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// RetentionEnabled reports whether the expired-link purge should run at all.
func (c *Config) RetentionEnabled() bool {
	return c.RetentionDays > 0
}

func (c *Config) Validate(isProduction bool) error {
	if c.LinkCacheTTLSeconds < 0 {
		return fmt.Errorf("LINK_CACHE_TTL_SECONDS must not be negative")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("LINK_RETENTION_DAYS must not be negative")
	}

	if isProduction {
		if c.PublicBaseURL == "" {
			log.Warn().Msg("PUBLIC_BASE_URL is empty in production: share URLs will be relative")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
