// Package observability exposes prometheus metrics for the HTTP surface,
// the model dispatcher, and the query executor. Metrics are served by the
// GET /metrics endpoint.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankql_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bankql_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankql_chat_requests_total",
			Help: "Chat requests by outcome (answered, conversation, advisory, error).",
		},
		[]string{"outcome"},
	)

	modelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankql_model_calls_total",
			Help: "Model invocations by model identifier and outcome.",
		},
		[]string{"model", "outcome"},
	)

	modelFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankql_model_fallbacks_total",
			Help: "Fallbacks to the next candidate model, by failed model and reason.",
		},
		[]string{"model", "reason"},
	)

	aggregationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankql_aggregations_total",
			Help: "Aggregation pipelines executed, by collection and outcome.",
		},
		[]string{"collection", "outcome"},
	)

	aggregationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bankql_aggregation_duration_seconds",
			Help:    "Aggregation pipeline latency by collection.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		chatRequestsTotal,
		modelCallsTotal,
		modelFallbacksTotal,
		aggregationsTotal,
		aggregationDurationSeconds,
	)
}

// ObserveHTTPRequest records one completed HTTP request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordChatRequest records the outcome of one /chat request.
func RecordChatRequest(outcome string) {
	chatRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordModelCall records one model invocation.
func RecordModelCall(model, outcome string) {
	modelCallsTotal.WithLabelValues(model, outcome).Inc()
}

// RecordModelFallback records a fallback past model for the given reason.
func RecordModelFallback(model, reason string) {
	modelFallbacksTotal.WithLabelValues(model, reason).Inc()
}

// ObserveAggregation records one executed pipeline.
func ObserveAggregation(collection, outcome string, duration time.Duration) {
	aggregationsTotal.WithLabelValues(collection, outcome).Inc()
	aggregationDurationSeconds.WithLabelValues(collection).Observe(duration.Seconds())
}
