package monitoring

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wine_quality"

// PrometheusCollectors are the series exported on /metrics
type PrometheusCollectors struct {
	registry *prometheus.Registry

	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	Predictions        *prometheus.CounterVec
	PredictionScore    prometheus.Histogram
	PredictionDuration prometheus.Histogram
	ComputationErrors  *prometheus.CounterVec
	CacheRequests      *prometheus.CounterVec
	RateLimitBlocks    prometheus.Counter
}

// NewPrometheusCollectors registers every collector on a private registry
func NewPrometheusCollectors() *PrometheusCollectors {
	p := &PrometheusCollectors{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Served predictions by quality tier.",
		}, []string{"tier"}),
		PredictionScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_score",
			Help:      "Distribution of predicted quality scores.",
			Buckets:   prometheus.LinearBuckets(3, 0.5, 13),
		}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent in transform, scale and regress.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
		}),
		ComputationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computation_errors_total",
			Help:      "Inputs rejected because the pipeline produced a non-finite value.",
		}, []string{"field"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		RateLimitBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_blocks_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.HTTPRequests,
		p.HTTPDuration,
		p.Predictions,
		p.PredictionScore,
		p.PredictionDuration,
		p.ComputationErrors,
		p.CacheRequests,
		p.RateLimitBlocks,
	)

	return p
}

// ObserveRequest records one finished HTTP request
func (p *PrometheusCollectors) ObserveRequest(route, method string, status int, seconds float64) {
	p.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	p.HTTPDuration.WithLabelValues(route, method).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format
func (p *PrometheusCollectors) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors
func (p *PrometheusCollectors) Registry() *prometheus.Registry {
	return p.registry
}
