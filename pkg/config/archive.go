package config

import (
	"os"
	"time"
)

// ArchiveConfig configures the optional Redis archive of finished runs.
// Archiving is disabled unless a Redis address is set.
type ArchiveConfig struct {
	// RedisAddr is the host:port of the Redis instance. Empty disables
	// archiving.
	RedisAddr string

	// RedisPassword and RedisDB select the connection.
	RedisPassword string
	RedisDB       int

	// TTL is how long an archived run is kept.
	TTL time.Duration
}

// Enabled reports whether archiving is configured.
func (c *ArchiveConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// DefaultArchiveConfig returns the built-in archive defaults.
func DefaultArchiveConfig() *ArchiveConfig {
	return &ArchiveConfig{
		TTL: 7 * 24 * time.Hour,
	}
}

func loadArchiveConfig() (*ArchiveConfig, error) {
	cfg := DefaultArchiveConfig()
	cfg.RedisAddr = os.Getenv("ARCHIVE_REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("ARCHIVE_REDIS_PASSWORD")

	var err error
	if cfg.RedisDB, err = envInt("ARCHIVE_REDIS_DB", cfg.RedisDB); err != nil {
		return nil, err
	}
	if cfg.TTL, err = envDuration("ARCHIVE_TTL", cfg.TTL); err != nil {
		return nil, err
	}
	return cfg, nil
}
