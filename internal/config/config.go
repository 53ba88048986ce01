package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port    string
	GinMode string
	// LogLevel is one of debug, info, warn, error
	LogLevel string

	ModelDir      string
	ScalerFile    string
	RegressorFile string

	DataDir          string
	HistoryEnabled   bool
	HistoryRetention time.Duration // rows older than this are pruned

	RedisAddr     string // empty selects the in-memory limiter
	RedisPassword string
	RedisDB       int

	RateLimitPerMinute int
	CacheTTL           time.Duration
	CORSOrigins        []string
	RequestTimeout     time.Duration
	EnableSwagger      bool
}

// Load reads an optional .env file and then the process environment, and validates the result.
func Load() (Config, error) {
	// a missing .env is the normal production case
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		Port:               envOr("PORT", "8080"),
		GinMode:            envOr("GIN_MODE", "release"),
		LogLevel:           strings.ToLower(envOr("LOG_LEVEL", "info")),
		ModelDir:           envOr("MODEL_DIR", "./models"),
		ScalerFile:         envOr("SCALER_FILE", "scaler.json"),
		RegressorFile:      envOr("REGRESSOR_FILE", "regressor.json"),
		DataDir:            envOr("DATA_DIR", "./data"),
		HistoryEnabled:     envBool("HISTORY_ENABLED", true),
		HistoryRetention:   envDuration("HISTORY_RETENTION", 30*24*time.Hour),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            envInt("REDIS_DB", 0),
		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MIN", 60),
		CacheTTL:           envDuration("CACHE_TTL", 15*time.Minute),
		CORSOrigins:        csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		RequestTimeout:     envDuration("REQUEST_TIMEOUT", 10*time.Second),
		EnableSwagger:      envBool("ENABLE_SWAGGER", true),
	}
}

// Validate rejects values that would silently disable a component.
func (c Config) Validate() error {
	switch {
	case c.RateLimitPerMinute <= 0:
		return apperrors.NewConfigurationError(
			fmt.Sprintf("RATE_LIMIT_PER_MIN must be positive, got %d", c.RateLimitPerMinute), nil)
	case c.RedisDB < 0:
		return apperrors.NewConfigurationError(
			fmt.Sprintf("REDIS_DB must not be negative, got %d", c.RedisDB), nil)
	case c.CacheTTL <= 0:
		return apperrors.NewConfigurationError("CACHE_TTL must be positive", nil)
	case c.RequestTimeout <= 0:
		return apperrors.NewConfigurationError("REQUEST_TIMEOUT must be positive", nil)
	case c.HistoryRetention <= 0:
		return apperrors.NewConfigurationError("HISTORY_RETENTION must be positive", nil)
	}
	return nil
}

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Addr is the listen address for http.Server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func envDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
