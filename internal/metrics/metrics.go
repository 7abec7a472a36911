// Package metrics registers the gateway's Prometheus metrics and exposes a
// gin middleware, following the same CounterVec/HistogramVec/Gauge shape and
// registration pattern as the teacher's facilitator metrics package.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the gateway exposes.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	userOpsTotal    *prometheus.CounterVec
	pipelineRejects *prometheus.CounterVec
	activeRequests  prometheus.Gauge
	aggregatorRisk  *prometheus.GaugeVec
}

// New creates and registers the gateway's metrics against the default
// Prometheus registry.
func New() *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total number of HTTP requests handled by the gateway",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		userOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_user_operations_total",
				Help: "Total number of UserOperations processed, by version and outcome",
			},
			[]string{"version", "outcome"},
		),
		pipelineRejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_pipeline_rejects_total",
				Help: "Total number of pipeline terminations, by module",
			},
			[]string{"module"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_active_requests",
				Help: "Number of currently in-flight requests",
			},
		),
		aggregatorRisk: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_aggregator_failure_rate",
				Help: "Observed BLS aggregator failure rate",
			},
			[]string{"aggregator"},
		),
	}

	prometheus.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.userOpsTotal,
		m.pipelineRejects,
		m.activeRequests,
		m.aggregatorRisk,
	)

	return m
}

// Middleware records per-request counters and latency, skipping /metrics
// itself to avoid self-referential noise.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.activeRequests.Inc()
		c.Next()
		m.activeRequests.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		m.requestsTotal.WithLabelValues(c.Request.Method, c.FullPath(), status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, c.FullPath()).Observe(duration)
	}
}

// RecordUserOp records the outcome of processing one UserOperation.
func (m *Metrics) RecordUserOp(version, outcome string) {
	m.userOpsTotal.WithLabelValues(version, outcome).Inc()
}

// RecordPipelineReject records a pipeline termination attributed to module.
func (m *Metrics) RecordPipelineReject(module string) {
	m.pipelineRejects.WithLabelValues(module).Inc()
}

// SetAggregatorFailureRate publishes an aggregator's current failure rate.
func (m *Metrics) SetAggregatorFailureRate(aggregator string, rate float64) {
	m.aggregatorRisk.WithLabelValues(aggregator).Set(rate)
}

// Handler returns the Prometheus exposition handler as a gin.HandlerFunc.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
