package metrics

import "time"

// StorageMetrics provides observability for storage-node block I/O: block
// reads, replicated write pipeline stages, and packet throughput.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
type StorageMetrics interface {
	// ObserveOperation records a block operation with its duration and
	// outcome.
	//
	// Parameters:
	//   - operation: "read" or "write"
	//   - duration: time taken to perform the operation
	//   - err: error if the operation failed, nil if successful
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordBytes records bytes transferred for a block read or write.
	RecordBytes(operation string, bytes int64)

	// ObservePipelineStage records the duration of one stage of a
	// replicated write pipeline (e.g. "ack_downstream", "disk_flush").
	ObservePipelineStage(stage string, duration time.Duration, bytes int64)

	// RecordPipelineAck records a full pipeline acknowledgment for a
	// packet, including whether any replica reported an error.
	RecordPipelineAck(replicaCount int, duration time.Duration, err error)

	// SetActiveStreams updates the current number of open block streams
	// (read or write) to storage nodes.
	SetActiveStreams(count int32)
}
