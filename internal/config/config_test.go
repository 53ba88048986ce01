package config

import (
	"log/slog"
	"testing"
	"time"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "GIN_MODE", "LOG_LEVEL", "MODEL_DIR", "SCALER_FILE", "REGRESSOR_FILE", "DATA_DIR",
	"HISTORY_ENABLED", "HISTORY_RETENTION", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "RATE_LIMIT_PER_MIN",
	"CACHE_TTL", "CORS_ORIGINS", "REQUEST_TIMEOUT", "ENABLE_SWAGGER",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./models", cfg.ModelDir)
	assert.Equal(t, "scaler.json", cfg.ScalerFile)
	assert.Equal(t, "regressor.json", cfg.RegressorFile)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, 30*24*time.Hour, cfg.HistoryRetention)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.EnableSwagger)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MODEL_DIR", "/srv/models")
	t.Setenv("HISTORY_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RATE_LIMIT_PER_MIN", "120")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", " https://wine.example , ,https://admin.wine.example")
	t.Setenv("ENABLE_SWAGGER", "0")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "/srv/models", cfg.ModelDir)
	assert.False(t, cfg.HistoryEnabled)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"https://wine.example", "https://admin.wine.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.EnableSwagger)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_DB", "three")
	t.Setenv("CACHE_TTL", "forever")
	t.Setenv("REQUEST_TIMEOUT", "-5s")
	t.Setenv("HISTORY_ENABLED", "maybe")

	cfg := FromEnv()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.HistoryEnabled)
}

func TestLoad_RejectsNonPositiveRateLimit(t *testing.T) {
	for _, v := range []string{"0", "-10"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("RATE_LIMIT_PER_MIN", v)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, apperrors.CategoryConfiguration, apperrors.ToAppError(err).Category, "got %v", err)
			assert.Contains(t, err.Error(), "RATE_LIMIT_PER_MIN")
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		clearEnv(t)
		return FromEnv()
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }, false},
		{"negative redis db", func(c *Config) { c.RedisDB = -1 }, false},
		{"zero cache ttl", func(c *Config) { c.CacheTTL = 0 }, false},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, false},
		{"zero retention", func(c *Config) { c.HistoryRetention = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.CategoryConfiguration, apperrors.ToAppError(err).Category)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}

	for level, expected := range tests {
		assert.Equal(t, expected, Config{LogLevel: level}.SlogLevel(), level)
	}
}
