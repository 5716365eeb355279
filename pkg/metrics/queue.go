package metrics

// QueueMetrics instruments the embedded store backing the bulk transfer
// manager's resumable job queue. It is separate from TransferMetrics
// because these are storage-engine internals (job records persisted,
// write failures, compaction) rather than transfer-level observability.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
type QueueMetrics interface {
	// RecordJobPersisted records a job record being written in the given
	// state ("enqueued", "file_completed", "completed").
	RecordJobPersisted(state string)

	// RecordPersistError records a failure writing job state to the
	// queue store.
	RecordPersistError()

	// RecordCompaction records a completed queue store compaction run.
	RecordCompaction()
}
