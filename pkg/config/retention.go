package config

import "time"

// RetentionConfig controls how long finished work logs stay resident for
// conversational reuse and how often the purge sweep runs.
type RetentionConfig struct {
	// WorkLogTTL is the residency window of an inactive work log. Each
	// completed turn refreshes it.
	WorkLogTTL time.Duration

	// PurgeInterval is how often the purge loop sweeps expired work logs.
	PurgeInterval time.Duration
}

// DefaultRetentionConfig returns the built-in retention defaults.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		WorkLogTTL:    30 * time.Minute,
		PurgeInterval: 10 * time.Minute,
	}
}

func loadRetentionConfig() (*RetentionConfig, error) {
	cfg := DefaultRetentionConfig()

	var err error
	if cfg.WorkLogTTL, err = envDuration("WORKLOG_TTL", cfg.WorkLogTTL); err != nil {
		return nil, err
	}
	if cfg.PurgeInterval, err = envDuration("PURGE_INTERVAL", cfg.PurgeInterval); err != nil {
		return nil, err
	}
	return cfg, nil
}
