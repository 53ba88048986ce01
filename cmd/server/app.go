package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/api"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/cache"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/config"
	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/history"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/monitoring"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/ratelimit"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/resilience"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/security"
	"github.com/gin-gonic/gin"
)

const (
	cacheMaxItems     = 10000
	historyQueueSize  = 256
	memorySampleEvery = 5 * time.Second
	pruneEvery        = time.Hour
)

// app owns every long-lived component of the server
type app struct {
	router    *gin.Engine
	predictor *prediction.Predictor
	metrics   *monitoring.Metrics

	cache    *cache.Cache
	redis    *ratelimit.RedisClient
	limiter  *ratelimit.RateLimiter
	store    *history.Store
	recorder *history.Recorder

	cancel context.CancelFunc
}

// newApp loads the model artifacts and assembles the server. A LoadError is returned as is.
func newApp(ctx context.Context, cfg config.Config, logger *monitoring.Logger) (*app, error) {
	store := prediction.NewArtifactStore(cfg.ModelDir)

	predictor, err := prediction.LoadPredictor(store, cfg.ScalerFile, cfg.RegressorFile)
	if err != nil {
		return nil, err
	}

	info := predictor.Info()
	logger.ArtifactLogger("scaler", store.Path(cfg.ScalerFile), map[string]interface{}{"kind": info.ScalerKind})
	logger.ArtifactLogger("regressor", store.Path(cfg.RegressorFile), map[string]interface{}{
		"kind":  info.RegressorKind,
		"trees": info.Trees,
	})

	ctx, cancel := context.WithCancel(ctx)
	a := &app{predictor: predictor, cancel: cancel}

	prom := monitoring.NewPrometheusCollectors()
	a.metrics = monitoring.NewMetrics().WithPrometheus(prom)

	monitoring.NewMemoryMonitor(memorySampleEvery, a.metrics, logger).Start(ctx)

	health := resilience.NewHealthRegistry(2 * time.Second)
	health.Register("model", true, func(context.Context) error {
		if a.predictor == nil {
			return fmt.Errorf("model not loaded")
		}
		return nil
	})

	if cfg.HistoryEnabled {
		a.store, err = history.Open(cfg.DataDir)
		if err != nil {
			// history is optional: serve predictions and report the component down
			openErr := apperrors.WrapError(err, "open history in %s", cfg.DataDir)
			slog.Error("Prediction history unavailable", "data_dir", cfg.DataDir, "error", err)
			a.store = nil
			health.Register("history", false, func(context.Context) error { return openErr })
		} else {
			a.recorder = history.NewRecorder(a.store, historyQueueSize)
			a.store.ScheduleRetention(ctx, cfg.HistoryRetention, pruneEvery)
			health.Register("history", false, a.store.Ping)
		}
	} else {
		health.Disable("history", "HISTORY_ENABLED=false")
	}

	// Redis is optional; a failed connection degrades to the in-memory limiter
	a.redis, err = ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable, using in-memory rate limiting", "addr", cfg.RedisAddr, "error", err)
	}
	if a.redis.IsEnabled() {
		health.Register("redis", false, a.redis.HealthCheck)
	} else {
		health.Disable("redis", "using in-memory rate limiting")
	}

	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.IPLimit = cfg.RateLimitPerMinute
	a.limiter = ratelimit.NewRateLimiter(a.redis, limiterCfg, a.metrics)

	a.cache = cache.NewCache(cfg.CacheTTL, cacheMaxItems)

	secCfg := security.DefaultSecurityConfig()
	secCfg.AllowedOrigins = cfg.CORSOrigins
	secCfg.RequestTimeout = cfg.RequestTimeout

	a.router, err = api.NewRouter(api.Dependencies{
		Service:    api.NewService(predictor, a.metrics, logger, a.recorder),
		Metrics:    a.metrics,
		Logger:     logger,
		Prometheus: prom,
		Health:     health,
		Cache:      a.cache,
		Limiter:    a.limiter,
		History:    a.store,
		Recorder:   a.recorder,
		Security:   secCfg,
		Swagger:    cfg.EnableSwagger,
	})
	if err != nil {
		a.Close()
		return nil, apperrors.NewInternalError("failed to build router", err)
	}

	return a, nil
}

// Close stops background work and releases connections, draining queued history writes first
func (a *app) Close() {
	a.cancel()

	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.store != nil {
		apperrors.SafeClose(a.store, "history database")
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.redis != nil {
		apperrors.SafeClose(a.redis, "redis client")
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.predictor != nil {
		apperrors.SafeClose(a.predictor, "predictor")
	}
}
