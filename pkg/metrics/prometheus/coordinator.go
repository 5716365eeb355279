package prometheus

import (
	"time"

	"github.com/marmos91/dfsclient/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// coordinatorMetrics is the Prometheus implementation of
// metrics.CoordinatorMetrics.
type coordinatorMetrics struct {
	callsTotal        *prometheus.CounterVec
	callDuration      *prometheus.HistogramVec
	callsInFlight     *prometheus.GaugeVec
	retriesTotal      *prometheus.CounterVec
	connectionsOpened *prometheus.CounterVec
	connectionsClosed *prometheus.CounterVec
	connectionsFailed *prometheus.CounterVec
	activeConnections prometheus.Gauge
}

// NewCoordinatorMetrics creates a new Prometheus-backed CoordinatorMetrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called with
// true), so callers can pass the result straight through to the
// coordinator client with no nil check of their own.
func NewCoordinatorMetrics() metrics.CoordinatorMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &coordinatorMetrics{
		callsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_coordinator_calls_total",
				Help: "Total number of coordinator RPC calls by method, endpoint, and error code",
			},
			[]string{"method", "endpoint", "error_code"},
		),
		callDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dfsclient_coordinator_call_duration_milliseconds",
				Help: "Duration of coordinator RPC calls in milliseconds",
				Buckets: []float64{
					1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000,
				},
			},
			[]string{"method", "endpoint"},
		),
		callsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dfsclient_coordinator_calls_in_flight",
				Help: "Current number of in-flight coordinator RPC calls",
			},
			[]string{"method", "endpoint"},
		),
		retriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_coordinator_retries_total",
				Help: "Total number of retries against a different coordinator endpoint",
			},
			[]string{"method", "from_endpoint", "to_endpoint"},
		),
		connectionsOpened: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_coordinator_connections_opened_total",
				Help: "Total number of coordinator connections opened by endpoint",
			},
			[]string{"endpoint"},
		),
		connectionsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_coordinator_connections_closed_total",
				Help: "Total number of coordinator connections closed by endpoint",
			},
			[]string{"endpoint"},
		),
		connectionsFailed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_coordinator_connections_failed_total",
				Help: "Total number of failed coordinator dial attempts by endpoint",
			},
			[]string{"endpoint"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dfsclient_coordinator_active_connections",
				Help: "Current number of open coordinator connections",
			},
		),
	}
}

func (m *coordinatorMetrics) RecordCall(method, endpoint string, duration time.Duration, errorCode string) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(method, endpoint, errorCode).Inc()
	m.callDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds() * 1000)
}

func (m *coordinatorMetrics) RecordCallStart(method, endpoint string) {
	if m == nil {
		return
	}
	m.callsInFlight.WithLabelValues(method, endpoint).Inc()
}

func (m *coordinatorMetrics) RecordCallEnd(method, endpoint string) {
	if m == nil {
		return
	}
	m.callsInFlight.WithLabelValues(method, endpoint).Dec()
}

func (m *coordinatorMetrics) RecordRetry(method, fromEndpoint, toEndpoint string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(method, fromEndpoint, toEndpoint).Inc()
}

func (m *coordinatorMetrics) RecordConnectionOpened(endpoint string) {
	if m == nil {
		return
	}
	m.connectionsOpened.WithLabelValues(endpoint).Inc()
}

func (m *coordinatorMetrics) RecordConnectionClosed(endpoint string) {
	if m == nil {
		return
	}
	m.connectionsClosed.WithLabelValues(endpoint).Inc()
}

func (m *coordinatorMetrics) RecordConnectionFailed(endpoint string) {
	if m == nil {
		return
	}
	m.connectionsFailed.WithLabelValues(endpoint).Inc()
}

func (m *coordinatorMetrics) SetActiveConnections(count int32) {
	if m == nil {
		return
	}
	m.activeConnections.Set(float64(count))
}
