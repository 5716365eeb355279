package metrics

import "time"

// TransferMetrics provides observability for the bulk transfer manager:
// directory-level upload/download jobs, their per-file progress, and the
// resumable job queue backing them.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
type TransferMetrics interface {
	// RecordJobStart records a bulk transfer job beginning.
	//
	// Parameters:
	//   - operation: "upload" or "download"
	//   - fileCount: number of files the job covers
	RecordJobStart(operation string, fileCount int)

	// RecordJobComplete records a bulk transfer job finishing, successfully
	// or otherwise.
	RecordJobComplete(operation string, fileCount int, bytes int64, duration time.Duration, err error)

	// RecordFileTransferred records a single file within a job completing.
	RecordFileTransferred(operation string, bytes int64, duration time.Duration, err error)

	// SetActiveJobs updates the current number of in-flight bulk transfer
	// jobs.
	SetActiveJobs(count int32)

	// SetQueueDepth updates the current number of queued, not-yet-started
	// jobs in the resumable job queue.
	SetQueueDepth(count int32)

	// RecordJobResumed records a job that was recovered from the resumable
	// queue after a crash or restart.
	RecordJobResumed(operation string)
}
