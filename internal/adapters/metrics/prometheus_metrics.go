// Package metrics provides the Prometheus implementation of ports.MetricsReporter.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sufield/signbridge/internal/core/ports"
)

// PrometheusMetrics implements ports.MetricsReporter using Prometheus.
type PrometheusMetrics struct {
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	fallbacks        *prometheus.CounterVec
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

var _ ports.MetricsReporter = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the bridge collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		upstreamCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signbridge_upstream_calls_total",
			Help: "Total number of calls made to the signing service",
		}, []string{"operation", "status"}), // status: HTTP status or "error"

		upstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signbridge_upstream_call_duration_seconds",
			Help:    "Duration of calls made to the signing service",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signbridge_upstream_fallback_total",
			Help: "Total number of versioned calls retried on the unversioned path",
		}, []string{"operation"}),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signbridge_http_requests_total",
			Help: "Total number of browser requests handled",
		}, []string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signbridge_http_request_duration_seconds",
			Help:    "Duration of browser requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// RecordUpstreamCall records one outbound call.
func (m *PrometheusMetrics) RecordUpstreamCall(operation string, status int, seconds float64) {
	m.upstreamCalls.WithLabelValues(operation, statusLabel(status)).Inc()
	m.upstreamDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordFallback records a versioned-to-unversioned switch.
func (m *PrometheusMetrics) RecordFallback(operation string) {
	m.fallbacks.WithLabelValues(operation).Inc()
}

// RecordRequest records one inbound request.
func (m *PrometheusMetrics) RecordRequest(route, method string, status int, seconds float64) {
	m.requests.WithLabelValues(route, method, statusLabel(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(seconds)
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
