package config

import "time"

// ExecutorConfig controls the run executor's concurrency and shutdown
// behavior.
type ExecutorConfig struct {
	// MaxConcurrentRuns is the number of workflow runs executing at once.
	// Runs submitted beyond the limit queue until a slot frees.
	MaxConcurrentRuns int

	// GracefulShutdownTimeout is the max time to wait for active runs to
	// observe cancellation during shutdown.
	GracefulShutdownTimeout time.Duration
}

// DefaultExecutorConfig returns the built-in executor defaults.
func DefaultExecutorConfig() *ExecutorConfig {
	return &ExecutorConfig{
		MaxConcurrentRuns:       50,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

func loadExecutorConfig() (*ExecutorConfig, error) {
	cfg := DefaultExecutorConfig()

	var err error
	if cfg.MaxConcurrentRuns, err = envInt("MAX_CONCURRENT_RUNS", cfg.MaxConcurrentRuns); err != nil {
		return nil, err
	}
	if cfg.GracefulShutdownTimeout, err = envDuration("GRACEFUL_SHUTDOWN_TIMEOUT", cfg.GracefulShutdownTimeout); err != nil {
		return nil, err
	}
	return cfg, nil
}
