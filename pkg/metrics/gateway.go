package metrics

import "time"

// GatewayMetrics observes gateway traffic. A nil value disables
// collection; call sites go through the nil-safe helpers below.
type GatewayMetrics interface {
	// ObserveRequest records one completed HTTP request.
	ObserveRequest(method, route string, status int, duration time.Duration)

	// ObserveChannelAppend records one appended channel event.
	ObserveChannelAppend(eventType string)

	// ObserveSSE tracks open SSE subscriptions; delta is +1 on connect
	// and -1 on disconnect.
	ObserveSSE(delta int)

	// ObserveBlobTransfer records bytes moved through the gateway.
	ObserveBlobTransfer(direction string, bytes int64)

	// ObserveTokenClaim records one stateful token claim attempt.
	ObserveTokenClaim(action, outcome string)
}

// NewGatewayMetrics creates a Prometheus-backed GatewayMetrics, or nil
// when metrics are disabled.
func NewGatewayMetrics() GatewayMetrics {
	if !IsEnabled() || newPrometheusGatewayMetrics == nil {
		return nil
	}
	return newPrometheusGatewayMetrics()
}

// newPrometheusGatewayMetrics is registered by pkg/metrics/prometheus
// during package initialization. The indirection keeps this package free
// of a prometheus import cycle.
var newPrometheusGatewayMetrics func() GatewayMetrics

// RegisterGatewayMetricsConstructor registers the Prometheus gateway
// metrics constructor.
func RegisterGatewayMetricsConstructor(constructor func() GatewayMetrics) {
	newPrometheusGatewayMetrics = constructor
}

// ObserveRequest records one completed HTTP request.
func ObserveRequest(m GatewayMetrics, method, route string, status int, duration time.Duration) {
	if m != nil {
		m.ObserveRequest(method, route, status, duration)
	}
}

// ObserveChannelAppend records one appended channel event.
func ObserveChannelAppend(m GatewayMetrics, eventType string) {
	if m != nil {
		m.ObserveChannelAppend(eventType)
	}
}

// ObserveSSE tracks open SSE subscriptions.
func ObserveSSE(m GatewayMetrics, delta int) {
	if m != nil {
		m.ObserveSSE(delta)
	}
}

// ObserveBlobTransfer records bytes moved through the gateway.
func ObserveBlobTransfer(m GatewayMetrics, direction string, bytes int64) {
	if m != nil {
		m.ObserveBlobTransfer(direction, bytes)
	}
}

// ObserveTokenClaim records one stateful token claim attempt.
func ObserveTokenClaim(m GatewayMetrics, action, outcome string) {
	if m != nil {
		m.ObserveTokenClaim(action, outcome)
	}
}
