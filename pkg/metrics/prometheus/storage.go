package prometheus

import (
	"time"

	"github.com/marmos91/dfsclient/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storageMetrics is the Prometheus implementation of metrics.StorageMetrics.
type storageMetrics struct {
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	bytesTransferred   *prometheus.CounterVec
	pipelineStage      *prometheus.HistogramVec
	pipelineAcksTotal  *prometheus.CounterVec
	pipelineAckLatency prometheus.Histogram
	activeStreams      prometheus.Gauge
}

// NewStorageMetrics creates a new Prometheus-backed StorageMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called with
// true).
func NewStorageMetrics() metrics.StorageMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storageMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_storage_operations_total",
				Help: "Total number of storage-node block operations by type and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dfsclient_storage_operation_duration_milliseconds",
				Help: "Duration of storage-node block operations in milliseconds",
				Buckets: []float64{
					1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 10000,
				},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_storage_bytes_transferred_total",
				Help: "Total bytes transferred to/from storage nodes",
			},
			[]string{"operation"},
		),
		pipelineStage: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dfsclient_storage_pipeline_stage_duration_milliseconds",
				Help: "Duration of individual replicated write pipeline stages in milliseconds",
				Buckets: []float64{
					1, 5, 10, 25, 50, 100, 250, 500,
				},
			},
			[]string{"stage"},
		),
		pipelineAcksTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dfsclient_storage_pipeline_acks_total",
				Help: "Total number of replicated write pipeline acknowledgments by status",
			},
			[]string{"status"},
		),
		pipelineAckLatency: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "dfsclient_storage_pipeline_ack_latency_milliseconds",
				Help: "End-to-end latency of a packet acknowledgment across the full replica pipeline",
				Buckets: []float64{
					1, 5, 10, 25, 50, 100, 250, 500, 1000,
				},
			},
		),
		activeStreams: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dfsclient_storage_active_streams",
				Help: "Current number of open block read/write streams to storage nodes",
			},
		),
	}
}

func (m *storageMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

func (m *storageMetrics) RecordBytes(operation string, bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(operation).Add(float64(bytes))
}

func (m *storageMetrics) ObservePipelineStage(stage string, duration time.Duration, bytes int64) {
	if m == nil {
		return
	}
	m.pipelineStage.WithLabelValues(stage).Observe(duration.Seconds() * 1000)
	if bytes > 0 {
		m.bytesTransferred.WithLabelValues("pipeline_" + stage).Add(float64(bytes))
	}
}

func (m *storageMetrics) RecordPipelineAck(replicaCount int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.pipelineAcksTotal.WithLabelValues(status).Inc()
	m.pipelineAckLatency.Observe(duration.Seconds() * 1000)
	_ = replicaCount
}

func (m *storageMetrics) SetActiveStreams(count int32) {
	if m == nil {
		return
	}
	m.activeStreams.Set(float64(count))
}
