// Package config holds the process configuration: built-in defaults
// overridden from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the umbrella configuration object handed to main at startup.
type Config struct {
	Server    *ServerConfig
	Executor  *ExecutorConfig
	Retention *RetentionConfig
	Model     *ModelConfig
	Archive   *ArchiveConfig
}

// Load builds the configuration from defaults and environment overrides.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}
	executor, err := loadExecutorConfig()
	if err != nil {
		return nil, err
	}
	retention, err := loadRetentionConfig()
	if err != nil {
		return nil, err
	}
	model, err := loadModelConfig()
	if err != nil {
		return nil, err
	}
	archive, err := loadArchiveConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Executor:  executor,
		Retention: retention,
		Model:     model,
		Archive:   archive,
	}, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
