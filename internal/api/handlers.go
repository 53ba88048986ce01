package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/cache"
	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/history"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/monitoring"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/ratelimit"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/resilience"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/types"
	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const defaultHistoryLimit = 20

// Handler serves the JSON API
type Handler struct {
	service  *Service
	metrics  *monitoring.Metrics
	health   *resilience.HealthRegistry
	store    *history.Store
	recorder *history.Recorder
	cache    *cache.Cache
	limiter  *ratelimit.RateLimiter
	started  time.Time
}

// NewHandler creates the API handlers. store, recorder, cache and limiter may be nil.
func NewHandler(deps Dependencies) *Handler {
	health := deps.Health
	if health == nil {
		health = resilience.NewHealthRegistry(2 * time.Second)
	}

	return &Handler{
		service:  deps.Service,
		metrics:  deps.Metrics,
		health:   health,
		store:    deps.History,
		recorder: deps.Recorder,
		cache:    deps.Cache,
		limiter:  deps.Limiter,
		started:  time.Now(),
	}
}

// Features lists the input columns
// @Summary      List input features
// @Description  The eleven measurements in model column order with their defaults
// @Tags         prediction
// @Produce      json
// @Success      200  {object}  types.FeaturesResponse
// @Router       /api/v1/features [get]
func (h *Handler) Features(c *gin.Context) {
	c.JSON(http.StatusOK, types.NewFeaturesResponse())
}

// Predict scores one wine sample
// @Summary      Predict wine quality
// @Description  Omitted fields keep their default value; unknown fields are ignored
// @Tags         prediction
// @Accept       json
// @Produce      json
// @Param        sample  body      types.PredictRequest  true  "Wine measurements"
// @Success      200     {object}  types.PredictResponse
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      422     {object}  errors.ErrorResponse
// @Failure      429     {object}  errors.ErrorResponse
// @Router       /api/v1/predict [post]
func (h *Handler) Predict(c *gin.Context) {
	fv := prediction.DefaultFeatures()

	// an empty body, chunked or not, scores the defaults
	if err := c.ShouldBindJSON(&fv); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.service.Score(c.Request.Context(), history.SourceAPI, fv)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.NewPredictResponse(result))
}

// Tiers returns the threshold table
// @Summary      Quality tiers
// @Description  Inclusive lower bounds, best tier first
// @Tags         prediction
// @Produce      json
// @Success      200  {object}  types.TiersResponse
// @Router       /api/v1/tiers [get]
func (h *Handler) Tiers(c *gin.Context) {
	c.JSON(http.StatusOK, types.TiersResponse{Tiers: prediction.Thresholds()})
}

// Predictions lists recent history
// @Summary      Recent predictions
// @Tags         history
// @Produce      json
// @Param        limit  query     int  false  "Rows to return (1-100)"  default(20)
// @Success      200    {object}  types.HistoryResponse
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      503    {object}  errors.ErrorResponse
// @Router       /api/v1/predictions [get]
func (h *Handler) Predictions(c *gin.Context) {
	if h.store == nil {
		_ = c.Error(apperrors.NewUnavailableError("prediction history", nil))
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > history.MaxRecent {
			_ = c.Error(apperrors.NewValidationError(
				"limit must be an integer between 1 and "+strconv.Itoa(history.MaxRecent), raw))
			return
		}
		limit = n
	}

	records, err := h.store.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("failed to read prediction history", err))
		return
	}

	c.JSON(http.StatusOK, types.HistoryResponse{Count: len(records), Predictions: records})
}

// PredictionStats counts history rows per tier
// @Summary      Served predictions per tier
// @Tags         history
// @Produce      json
// @Success      200  {object}  types.TierStatsResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /api/v1/predictions/stats [get]
func (h *Handler) PredictionStats(c *gin.Context) {
	if h.store == nil {
		_ = c.Error(apperrors.NewUnavailableError("prediction history", nil))
		return
	}

	counts, err := h.store.TierCounts(c.Request.Context())
	if err != nil {
		_ = c.Error(apperrors.NewInternalError("failed to count predictions", err))
		return
	}

	var total int64
	for _, tc := range counts {
		total += tc.Count
	}

	c.JSON(http.StatusOK, types.TierStatsResponse{Total: total, Tiers: counts})
}

// Health reports liveness and dependency status
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Failure      503  {object}  types.HealthResponse
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	status, components := h.health.Check(c.Request.Context())

	resp := types.NewHealthResponse(status, Version, h.started, h.service.Info(), components)

	code := http.StatusOK
	if status == resilience.HealthDown {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, resp)
}

// Stats returns a snapshot of in-process counters
// @Summary      Runtime statistics
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats := gin.H{
		"metrics":    h.metrics.GetStats(),
		"rate_limit": h.metrics.GetRateLimitStats(),
		"timestamp":  time.Now().Format(time.RFC3339),
	}

	if h.cache != nil {
		stats["cache"] = h.cache.Stats()
	}
	if h.limiter != nil {
		stats["limiter"] = h.limiter.GetStats()
	}
	if h.store != nil {
		stats["history_db"] = h.store.Stats()
	}
	if h.recorder != nil {
		stats["history_writer"] = h.recorder.Stats()
	}

	c.JSON(http.StatusOK, stats)
}
