package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Predictions(t *testing.T) {
	prom := NewPrometheusCollectors()
	m := NewMetrics().WithPrometheus(prom)

	m.RecordPrediction("AVERAGE QUALITY", 5.2, time.Millisecond)
	m.RecordPrediction("AVERAGE QUALITY", 5.7, time.Millisecond)
	m.RecordPrediction("BEST QUALITY", 8.1, time.Millisecond)
	m.IncrementComputationError("chlorides")

	assert.Equal(t, map[string]int64{"AVERAGE QUALITY": 2, "BEST QUALITY": 1}, m.GetTierDistribution())

	stats := m.GetStats()
	assert.Equal(t, int64(3), stats["predictions"])
	assert.Equal(t, int64(1), stats["computation_errors"])

	assert.Equal(t, 2.0, testutil.ToFloat64(prom.Predictions.WithLabelValues("AVERAGE QUALITY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.ComputationErrors.WithLabelValues("chlorides")))
}

func TestMetrics_CacheHitRate(t *testing.T) {
	m := NewMetrics()

	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()

	stats := m.GetStats()
	assert.Equal(t, 75.0, stats["cache_hit_rate_percent"])
}

func TestMetrics_Percentiles(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, time.Duration(0), m.GetPercentileResponseTime(50))

	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, 50*time.Millisecond, m.GetPercentileResponseTime(50))
	assert.Equal(t, 100*time.Millisecond, m.GetPercentileResponseTime(100))
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.IncrementRequest()
	m.RecordPrediction("GOOD QUALITY", 6.3, time.Millisecond)
	m.IncrementRateLimitIPBlock()
	m.IncrementRateLimitEndpoint("/api/v1/predict")

	m.Reset()

	stats := m.GetStats()
	assert.Equal(t, int64(0), stats["total_requests"])
	assert.Equal(t, int64(0), stats["predictions"])
	assert.Empty(t, m.GetTierDistribution())
	assert.Equal(t, int64(0), m.GetRateLimitStats()["ip_blocks"])
	assert.Empty(t, m.GetRateLimitStats()["endpoint_blocks"])
}

func TestMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)
	prom := NewPrometheusCollectors()
	metrics := NewMetrics().WithPrometheus(prom)

	r := gin.New()
	r.Use(MonitoringMiddleware(metrics, logger, prom))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("exploded"))
		c.String(http.StatusInternalServerError, "boom")
	})

	for _, path := range []string{"/ok", "/ok", "/boom", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(4), stats["total_requests"])
	assert.Equal(t, int64(2), stats["error_count"])
	assert.Equal(t, map[int]int64{200: 2, 500: 1, 404: 1}, metrics.GetStatusCodeDistribution())

	assert.Equal(t, 2.0, testutil.ToFloat64(prom.HTTPRequests.WithLabelValues("/ok", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.HTTPRequests.WithLabelValues("unmatched", "GET", "404")))

	logs := buf.String()
	assert.Contains(t, logs, `"msg":"HTTP Request"`)
	assert.Contains(t, logs, `"msg":"API Error"`)
	assert.Contains(t, logs, "exploded")
}

func TestSecurityMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	r := gin.New()
	r.Use(SecurityMonitoringMiddleware(logger))
	r.GET("/api/v1/tiers", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tiers", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	r.ServeHTTP(w, req)
	assert.Empty(t, buf.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/tiers?q=1%20UNION%20SELECT%20password", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7")
	r.ServeHTTP(w, req)

	// never blocks
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "suspicious_activity_detected")
}

func TestLogger_LevelAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelWarn)

	logger.PredictionLogger("api", "GOOD QUALITY", 6.4, time.Millisecond, false)
	assert.Empty(t, buf.String())

	logger.SetLevel(slog.LevelInfo)
	logger.PredictionLogger("api", "GOOD QUALITY", 6.4, time.Millisecond, true)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "Prediction Completed", entry["msg"])
	assert.Equal(t, "GOOD QUALITY", entry["tier"])
	assert.Equal(t, true, entry["cache_hit"])
	_, err := time.Parse(time.RFC3339, entry["timestamp"].(string))
	assert.NoError(t, err)
}

func TestLogger_CacheLoggerShortKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	assert.NotPanics(t, func() { logger.CacheLogger("get", "abc", false, 0) })
	assert.Contains(t, buf.String(), `"key_hash":"abc"`)
}

func TestMemoryMonitor_Sample(t *testing.T) {
	var buf bytes.Buffer
	metrics := NewMetrics()
	mm := NewMemoryMonitor(time.Hour, metrics, NewLoggerWithWriter(&buf, slog.LevelInfo))

	stats := mm.Sample()
	assert.NotZero(t, stats.HeapSys)
	assert.Equal(t, stats, mm.Last())
	assert.Equal(t, int64(stats.HeapSys), metrics.GetStats()["go_heap_sys_bytes"])

	ctx, cancel := context.WithCancel(context.Background())
	mm.Start(ctx)
	cancel()
}

func TestPrometheusHandler(t *testing.T) {
	prom := NewPrometheusCollectors()
	NewMetrics().WithPrometheus(prom).RecordPrediction("BASIC QUALITY", 4.2, time.Microsecond)

	w := httptest.NewRecorder()
	prom.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `wine_quality_predictions_total{tier="BASIC QUALITY"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
