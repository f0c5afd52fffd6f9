package config

import (
	"os"
	"time"
)

// ModelConfig configures the chat-completion model backend.
type ModelConfig struct {
	// APIKey authenticates against the completion endpoint. Empty is
	// allowed so tests and offline tooling can construct the config; the
	// validator in main rejects it for server startup.
	APIKey string

	// Model is the completion model identifier.
	Model string

	// BaseURL is the API root, overridable for proxies and compatible
	// backends.
	BaseURL string

	// Temperature and MaxTokens are passed through per request.
	Temperature float64
	MaxTokens   int

	// Timeout bounds a single completion call.
	Timeout time.Duration
}

// DefaultModelConfig returns the built-in model defaults.
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		Model:       "gpt-4o-mini",
		BaseURL:     "https://api.openai.com/v1",
		Temperature: 0.2,
		MaxTokens:   2048,
		Timeout:     90 * time.Second,
	}
}

func loadModelConfig() (*ModelConfig, error) {
	cfg := DefaultModelConfig()
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Model = getEnvOrDefault("MODEL_NAME", cfg.Model)
	cfg.BaseURL = getEnvOrDefault("MODEL_BASE_URL", cfg.BaseURL)

	var err error
	if cfg.Temperature, err = envFloat("MODEL_TEMPERATURE", cfg.Temperature); err != nil {
		return nil, err
	}
	if cfg.MaxTokens, err = envInt("MODEL_MAX_TOKENS", cfg.MaxTokens); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = envDuration("MODEL_TIMEOUT", cfg.Timeout); err != nil {
		return nil, err
	}
	return cfg, nil
}
