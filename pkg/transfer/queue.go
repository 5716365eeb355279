package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/marmos91/dfsclient/pkg/metrics"
)

// Queue persists bulk-transfer job and per-file state in an embedded
// Badger store, keyed by job id. Every uploadDirectory/downloadDirectory
// call starts a new job id, so state written by an earlier call is never
// read back by a later one.
type Queue struct {
	db      *badgerdb.DB
	metrics metrics.QueueMetrics
}

// WithMetrics attaches a metrics sink for the queue store itself; nil
// disables recording.
func (q *Queue) WithMetrics(qm metrics.QueueMetrics) *Queue {
	q.metrics = qm
	return q
}

type jobMeta struct {
	Operation   string    `json:"operation"`
	FileCount   int       `json:"file_count"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Completed   bool      `json:"completed"`
}

type fileState struct {
	Success bool  `json:"success"`
	Bytes   int64 `json:"bytes"`
}

// OpenQueue opens (or creates) the Badger store at path.
func OpenQueue(path string) (*Queue, error) {
	db, err := badgerdb.Open(badgerdb.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger store at %s: %w", path, err)
	}
	return &Queue{db: db}, nil
}

// Close releases the underlying Badger store.
func (q *Queue) Close() error {
	if q == nil || q.db == nil {
		return nil
	}
	return q.db.Close()
}

func jobMetaKey(jobID string) []byte {
	return []byte("job:" + jobID + ":meta")
}

func fileStateKey(jobID, path string) []byte {
	return []byte("job:" + jobID + ":file:" + path)
}

func (q *Queue) putJobMeta(jobID string, meta jobMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return q.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(jobMetaKey(jobID), data)
	})
}

func (q *Queue) getFileState(jobID, path string) (*fileState, bool) {
	var fs fileState
	found := false
	_ = q.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(fileStateKey(jobID, path))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if jsonErr := json.Unmarshal(val, &fs); jsonErr != nil {
				return jsonErr
			}
			found = true
			return nil
		})
	})
	return &fs, found
}

func (q *Queue) putFileState(jobID, path string, fs fileState) error {
	data, err := json.Marshal(fs)
	if err != nil {
		return err
	}
	return q.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(fileStateKey(jobID, path), data)
	})
}

// persistJobStart records a new job and returns its id, a no-op
// ("") when no queue is configured.
func (m *Manager) persistJobStart(ctx context.Context, operation string, fileCount int) string {
	if m.queue == nil {
		return ""
	}
	jobID := uuid.NewString()
	meta := jobMeta{Operation: operation, FileCount: fileCount, StartedAt: time.Now()}
	if err := m.queue.putJobMeta(jobID, meta); err != nil {
		m.recordPersistError()
		return ""
	}
	m.recordJobPersisted("enqueued")
	if m.metrics != nil {
		m.metrics.RecordJobStart(operation, fileCount)
	}
	return jobID
}

// shouldSkip reports whether path was already completed successfully in
// a prior run of jobID, letting a resumed bulk transfer skip it.
func (m *Manager) shouldSkip(jobID, path string) bool {
	if m.queue == nil || jobID == "" {
		return false
	}
	fs, found := m.queue.getFileState(jobID, path)
	if found && fs.Success && m.metrics != nil {
		m.metrics.RecordJobResumed("skip")
	}
	return found && fs.Success
}

func (m *Manager) persistFileResult(jobID string, r Result) {
	if m.queue == nil || jobID == "" {
		return
	}
	if err := m.queue.putFileState(jobID, r.Source, fileState{Success: r.Success, Bytes: r.Bytes}); err != nil {
		m.recordPersistError()
		return
	}
	m.recordJobPersisted("file_completed")
}

func (m *Manager) persistJobComplete(jobID string) {
	if m.queue == nil || jobID == "" {
		return
	}
	meta := jobMeta{CompletedAt: time.Now(), Completed: true}
	if err := m.queue.putJobMeta(jobID, meta); err != nil {
		m.recordPersistError()
		return
	}
	m.recordJobPersisted("completed")
}

func (m *Manager) recordPersistError() {
	if m.queue != nil && m.queue.metrics != nil {
		m.queue.metrics.RecordPersistError()
	}
}

func (m *Manager) recordJobPersisted(state string) {
	if m.queue != nil && m.queue.metrics != nil {
		m.queue.metrics.RecordJobPersisted(state)
	}
}
