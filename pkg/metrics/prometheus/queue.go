package prometheus

import (
	"github.com/marmos91/dfsclient/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queueMetrics instruments the embedded Badger database backing the bulk
// transfer manager's resumable job queue. It implements
// metrics.QueueMetrics, not metrics.TransferMetrics - pkg/transfer's queue
// holds it through that separate interface, since these are
// storage-engine internals rather than transfer-level observability.
type queueMetrics struct {
	jobsPersisted  *prometheus.CounterVec
	persistErrors  prometheus.Counter
	compactionRuns prometheus.Counter
}

// NewQueueMetrics creates a new Prometheus-backed queue store metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called with
// true).
func NewQueueMetrics() *queueMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &queueMetrics{
		jobsPersisted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_transfer_queue_jobs_persisted_total",
				Help: "Total number of job records written to the resumable queue store by state",
			},
			[]string{"state"}, // "enqueued", "file_completed", "completed"
		),
		persistErrors: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dfsclient_transfer_queue_persist_errors_total",
				Help: "Total number of errors persisting job state to the queue store",
			},
		),
		compactionRuns: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "dfsclient_transfer_queue_compactions_total",
				Help: "Total number of queue store compaction runs",
			},
		),
	}
}

// RecordJobPersisted records a job record being written in the given state.
func (m *queueMetrics) RecordJobPersisted(state string) {
	if m == nil {
		return
	}
	m.jobsPersisted.WithLabelValues(state).Inc()
}

// RecordPersistError records a failure writing job state to the queue
// store.
func (m *queueMetrics) RecordPersistError() {
	if m == nil {
		return
	}
	m.persistErrors.Inc()
}

// RecordCompaction records a completed queue store compaction run.
func (m *queueMetrics) RecordCompaction() {
	if m == nil {
		return
	}
	m.compactionRuns.Inc()
}
