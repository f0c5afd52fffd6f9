package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 50, cfg.Executor.MaxConcurrentRuns)
	assert.Equal(t, 30*time.Minute, cfg.Retention.WorkLogTTL)
	assert.Equal(t, 10*time.Minute, cfg.Retention.PurgeInterval)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Model)
	assert.False(t, cfg.Archive.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MAX_CONCURRENT_RUNS", "8")
	t.Setenv("WORKLOG_TTL", "2h")
	t.Setenv("MODEL_NAME", "gpt-4.1")
	t.Setenv("MODEL_TEMPERATURE", "0.7")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ARCHIVE_REDIS_ADDR", "localhost:6379")
	t.Setenv("ARCHIVE_TTL", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, 8, cfg.Executor.MaxConcurrentRuns)
	assert.Equal(t, 2*time.Hour, cfg.Retention.WorkLogTTL)
	assert.Equal(t, "gpt-4.1", cfg.Model.Model)
	assert.Equal(t, 0.7, cfg.Model.Temperature)
	assert.Equal(t, "sk-test", cfg.Model.APIKey)
	assert.True(t, cfg.Archive.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.Archive.TTL)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad int", "MAX_CONCURRENT_RUNS", "many"},
		{"bad duration", "PURGE_INTERVAL", "10 minutes"},
		{"bad float", "MODEL_TEMPERATURE", "warm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
