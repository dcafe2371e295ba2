package config

import (
	"testing"
	"time"

	"github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantMsg: "field 'server.port' must be at most 65535",
		},
		{
			name:    "missing webhook",
			mutate:  func(c *Config) { c.Backend.WebhookURL = "" },
			wantMsg: "field 'backend.webhook_url' is required",
		},
		{
			name:    "relative status url",
			mutate:  func(c *Config) { c.Backend.StatusURL = "/status" },
			wantMsg: "field 'backend.status_url' must be an absolute URL",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Poller.Interval = 0 },
			wantMsg: "field 'poller.interval' must be greater than 0",
		},
		{
			name:    "no poll attempts",
			mutate:  func(c *Config) { c.Poller.MaxAttempts = 0 },
			wantMsg: "field 'poller.max_attempts' must be at least 1",
		},
		{
			name:    "redis address without port",
			mutate:  func(c *Config) { c.JobStore.RedisAddr = "localhost" },
			wantMsg: "field 'job_store.redis_addr' must be host:port",
		},
		{
			name:    "mongo uri scheme",
			mutate:  func(c *Config) { c.Database.URI = "postgres://db" },
			wantMsg: "field 'database.uri' must start with \"mongodb\"",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantMsg: "field 'logging.format' must be one of: json text",
		},
		{
			name:    "no cors origins",
			mutate:  func(c *Config) { c.CORS.AllowedOrigins = nil },
			wantMsg: "field 'cors.allowed_origins' must have at least 1 items",
		},
		{
			name:    "retry max below initial",
			mutate:  func(c *Config) { c.Backend.RetryMaxDelay = time.Millisecond },
			wantMsg: "field 'backend.retry_max_delay' must not be less than RetryInitialDelay",
		},
		{
			name:    "write timeout shorter than video timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = time.Minute },
			wantMsg: "'server.write_timeout' (1m0s) must not be shorter than 'backend.video_timeout' (3m0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantMsg == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, errors.ErrorTypeConfiguration, err.Type)
			assert.Contains(t, err.Message, tt.wantMsg)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.WebhookURL = ""
	cfg.Limits.HistoryTurns = 0

	err := Validate(cfg)
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "backend.webhook_url")
	assert.Contains(t, err.Message, "limits.history_turns")
	assert.Contains(t, err.Message, "; ")
}
