package operation

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command outcome labels for kmsat_commands_total.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds the connector's Prometheus collectors in a dedicated registry.
// It implements transport.Observer.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	commands     *prometheus.CounterVec
}

// NewMetrics creates collectors registered on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// kmsat_http_requests_total{client="account",endpoint="/account",status="200"}
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kmsat_http_requests_total",
				Help: "Total vendor API requests by client, endpoint and HTTP status (0 when no response was received)",
			},
			[]string{"client", "endpoint", "status"},
		),

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kmsat_http_request_duration_seconds",
				Help:    "Vendor API request latency by client and endpoint",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"client", "endpoint"},
		),

		commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kmsat_commands_total",
				Help: "Total dispatched commands by name and result",
			},
			[]string{"command", "result"},
		),
	}
}

// ObserveRequest records one vendor API request.
func (m *Metrics) ObserveRequest(client, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(client, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(client, endpoint).Observe(duration.Seconds())
}

// RecordCommand records the outcome of a dispatched command.
func (m *Metrics) RecordCommand(command string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.commands.WithLabelValues(command, result).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format
// read by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
