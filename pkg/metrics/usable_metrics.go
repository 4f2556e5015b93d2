// Package metrics provides Prometheus metrics for monitoring Taskable components.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Usable API and provisioning metrics
var (
	// storeRequestsTotal records calls issued to the Usable API.
	// Labels:
	//   - operation: Client operation (e.g., "list_fragments", "create_fragment")
	//   - status: HTTP status code, or "network_error"
	storeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskable_usable_requests_total",
			Help: "Total number of requests issued to the Usable API",
		},
		[]string{"operation", "status"},
	)

	// storeRequestDuration records the latency of Usable API calls.
	// Labels:
	//   - operation: Client operation
	// Buckets: 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, 10s, 30s
	storeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskable_usable_request_duration_seconds",
			Help:    "Duration of Usable API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// provisioningActionsTotal records template provisioning decisions.
	// Labels:
	//   - artifact: "template" or "instruction-set"
	//   - action: "create", "replace", "refresh" or "reuse"
	provisioningActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskable_provisioning_actions_total",
			Help: "Total number of template provisioning actions by artifact",
		},
		[]string{"artifact", "action"},
	)

	// gatewayRequestsTotal records requests served by the HTTP gateway.
	// Labels:
	//   - method: HTTP method
	//   - route: Matched gin route template
	//   - status: Response status code
	gatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskable_gateway_requests_total",
			Help: "Total number of HTTP requests served by the gateway",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(storeRequestsTotal)
	prometheus.MustRegister(storeRequestDuration)
	prometheus.MustRegister(provisioningActionsTotal)
	prometheus.MustRegister(gatewayRequestsTotal)
}

// RecordStoreRequest records one Usable API call.
// Parameters:
//   - operation: Client operation (e.g., "list_fragments")
//   - status: HTTP status code or "network_error"
func RecordStoreRequest(operation, status string) {
	storeRequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordStoreDuration records the latency of one Usable API call.
func RecordStoreDuration(operation string, durationSeconds float64) {
	storeRequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordProvisioning records a provisioning decision for an artifact.
func RecordProvisioning(artifact, action string) {
	provisioningActionsTotal.WithLabelValues(artifact, action).Inc()
}

// RecordGatewayRequest records one request served by the gateway.
func RecordGatewayRequest(method, route, status string) {
	gatewayRequestsTotal.WithLabelValues(method, route, status).Inc()
}
