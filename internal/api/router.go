package api

import (
	"net/http"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/cache"
	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/frontend"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/history"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/monitoring"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/ratelimit"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/resilience"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/security"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ZanzyTHEbar/wine-quality-expert/docs"
)

// PredictPath is the cached JSON prediction route
const PredictPath = "/api/v1/predict"

// Dependencies are the components the router is assembled from.
// Metrics, Logger and Service are required; the rest are optional.
type Dependencies struct {
	Service    *Service
	Metrics    *monitoring.Metrics
	Logger     *monitoring.Logger
	Prometheus *monitoring.PrometheusCollectors
	Health     *resilience.HealthRegistry
	Cache      *cache.Cache
	Limiter    *ratelimit.RateLimiter
	History    *history.Store
	Recorder   *history.Recorder
	Security   security.SecurityConfig
	Swagger    bool
}

// NewRouter builds the gin engine with the full middleware chain and every route
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	pages, err := frontend.NewHandler(deps.Service)
	if err != nil {
		return nil, err
	}

	h := NewHandler(deps)
	sec := security.NewSecurityMiddleware(deps.Security)

	r := gin.New()

	// monitoring first so it sees every request, including aborted ones
	r.Use(monitoring.MonitoringMiddleware(deps.Metrics, deps.Logger, deps.Prometheus))
	r.Use(monitoring.SecurityMonitoringMiddleware(deps.Logger))

	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	r.Use(sec.Headers())
	r.Use(security.CSPMiddleware())
	if len(deps.Security.AllowedOrigins) > 0 {
		r.Use(sec.CORS())
	}
	r.Use(sec.ValidateContentType)
	r.Use(sec.LimitBody)
	r.Use(sec.RequestTimeout)

	if deps.Limiter != nil {
		r.Use(deps.Limiter.IPRateLimitMiddleware())
	}
	if deps.Cache != nil {
		deps.Cache.OnHit(func(_ *gin.Context, request []byte, item *cache.CacheItem) {
			deps.Service.RecordCacheHit(request, item.Data)
		})
		r.Use(deps.Cache.Middleware(PredictPath, deps.Metrics))
	}

	r.GET("/", pages.Index)
	r.POST("/", pages.Submit)

	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)
	if deps.Prometheus != nil {
		r.GET("/metrics", gin.WrapH(deps.Prometheus.Handler()))
	}
	if deps.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/features", h.Features)
		v1.POST("/predict", h.Predict)
		v1.GET("/tiers", h.Tiers)
		v1.GET("/predictions", h.Predictions)
		v1.GET("/predictions/stats", h.PredictionStats)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND", "message": "route not found"})
	})

	return r, nil
}
