// Package prometheus implements the metric interfaces with Prometheus
// collectors. Importing it registers the constructors with pkg/metrics.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/latchhq/latch/pkg/metrics"
)

func init() {
	metrics.RegisterGatewayMetricsConstructor(NewGatewayMetrics)
}

// gatewayMetrics is the Prometheus implementation of
// metrics.GatewayMetrics.
type gatewayMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	channelAppends  *prometheus.CounterVec
	sseSubscribers  prometheus.Gauge
	blobBytes       *prometheus.CounterVec
	tokenClaims     *prometheus.CounterVec
}

// NewGatewayMetrics creates a Prometheus-backed GatewayMetrics instance.
// Returns nil if metrics are not enabled.
func NewGatewayMetrics() metrics.GatewayMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &gatewayMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "latch_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "latch_http_request_duration_milliseconds",
				Help: "HTTP request duration in milliseconds",
				Buckets: []float64{
					1,    // fast kv hits
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms
					1000, // 1s
					5000, // slow upstream calls
				},
			},
			[]string{"method", "route"},
		),
		channelAppends: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "latch_channel_events_appended_total",
				Help: "Total channel events appended by event type",
			},
			[]string{"type"},
		),
		sseSubscribers: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "latch_sse_subscribers",
				Help: "Currently open SSE subscriptions",
			},
		),
		blobBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "latch_blob_transfer_bytes_total",
				Help: "Bytes moved through the gateway by direction",
			},
			[]string{"direction"}, // "upload", "download"
		),
		tokenClaims: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "latch_token_claims_total",
				Help: "Stateful token claim attempts by action and outcome",
			},
			[]string{"action", "outcome"}, // outcome: "won", "lost", "expired", "revoked"
		),
	}
}

func (m *gatewayMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).
		Observe(float64(duration.Milliseconds()))
}

func (m *gatewayMetrics) ObserveChannelAppend(eventType string) {
	m.channelAppends.WithLabelValues(eventType).Inc()
}

func (m *gatewayMetrics) ObserveSSE(delta int) {
	m.sseSubscribers.Add(float64(delta))
}

func (m *gatewayMetrics) ObserveBlobTransfer(direction string, bytes int64) {
	m.blobBytes.WithLabelValues(direction).Add(float64(bytes))
}

func (m *gatewayMetrics) ObserveTokenClaim(action, outcome string) {
	m.tokenClaims.WithLabelValues(action, outcome).Inc()
}
