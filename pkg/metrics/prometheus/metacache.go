package prometheus

import (
	"time"

	"github.com/marmos91/dfsclient/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metacacheMetrics is the Prometheus implementation of
// metrics.MetacacheMetrics.
type metacacheMetrics struct {
	lookupsTotal   *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	invalidations  *prometheus.CounterVec
	expirations    prometheus.Counter
	entryCount     prometheus.Gauge
}

// NewMetacacheMetrics creates a new Prometheus-backed MetacacheMetrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called with
// true).
func NewMetacacheMetrics() metrics.MetacacheMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &metacacheMetrics{
		lookupsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_metacache_lookups_total",
				Help: "Total number of metacache lookups by operation and hit/miss status",
			},
			[]string{"operation", "result"}, // result: "hit", "miss"
		),
		lookupDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dfsclient_metacache_lookup_duration_microseconds",
				Help: "Duration of metacache lookups in microseconds",
				Buckets: []float64{
					10, 50, 100, 500, 1000, 5000, 10000,
				},
			},
			[]string{"operation"},
		),
		invalidations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_metacache_invalidations_total",
				Help: "Total number of metacache entry invalidations by triggering operation",
			},
			[]string{"operation"},
		),
		expirations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dfsclient_metacache_expirations_total",
				Help: "Total number of metacache entries dropped for exceeding their TTL",
			},
		),
		entryCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dfsclient_metacache_entries",
				Help: "Current number of entries held in the metacache",
			},
		),
	}
}

func (m *metacacheMetrics) ObserveLookup(operation string, hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookupsTotal.WithLabelValues(operation, result).Inc()
	m.lookupDuration.WithLabelValues(operation).Observe(float64(duration.Microseconds()))
}

func (m *metacacheMetrics) RecordInvalidation(operation string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(operation).Inc()
}

func (m *metacacheMetrics) RecordExpiry() {
	if m == nil {
		return
	}
	m.expirations.Inc()
}

func (m *metacacheMetrics) RecordEntryCount(count int64) {
	if m == nil {
		return
	}
	m.entryCount.Set(float64(count))
}
