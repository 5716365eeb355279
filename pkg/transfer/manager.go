// Package transfer implements the bulk transfer manager (C9): a bounded
// worker pool that fans single-file upload/download operations across
// many files, on top of the composite DFS file client.
package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/dfsclient/pkg/dfsclient"
	"github.com/marmos91/dfsclient/pkg/metrics"
)

// DefaultWorkers is used when Options.Workers is unset or non-positive.
const DefaultWorkers = 4

// Result is the outcome of one file-level transfer.
type Result struct {
	Source        string
	Destination   string
	Success       bool
	Err           error
	Bytes         int64
	ElapsedMillis int64
}

// Options configures a Manager's worker pool and optional resumable
// job queue.
type Options struct {
	Workers   int
	QueuePath string // empty disables the resumable job queue
}

// Manager fans file-level transfers across a fixed-size worker pool,
// built on top of a composite DFS client. Each worker performs whole
// file transfers end-to-end; no mutable state is shared across files
// other than the client itself, which is safe for concurrent use.
type Manager struct {
	client  *dfsclient.Client
	workers int
	queue   *Queue
	metrics metrics.TransferMetrics
}

// New builds a Manager. If opts.QueuePath is non-empty, a Badger-backed
// job queue is opened at that path and each directory transfer records
// its per-file results there under a new job id. Results recorded by an
// earlier call are not consulted: running a directory transfer again
// lists the directory again and transfers every file again.
func New(client *dfsclient.Client, opts Options) (*Manager, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	m := &Manager{client: client, workers: workers}

	if opts.QueuePath != "" {
		q, err := OpenQueue(opts.QueuePath)
		if err != nil {
			return nil, fmt.Errorf("open transfer queue: %w", err)
		}
		m.queue = q
	}

	return m, nil
}

// WithMetrics attaches a metrics sink; nil disables recording.
func (m *Manager) WithMetrics(tm metrics.TransferMetrics) *Manager {
	m.metrics = tm
	return m
}

// WithQueueMetrics attaches a metrics sink for the resumable job queue
// store itself; a no-op if no queue is configured.
func (m *Manager) WithQueueMetrics(qm metrics.QueueMetrics) *Manager {
	if m.queue != nil {
		m.queue.WithMetrics(qm)
	}
	return m
}

// Close releases the resumable job queue, if one is open.
func (m *Manager) Close() error {
	if m.queue == nil {
		return nil
	}
	return m.queue.Close()
}

func listenerOrNoop(l ProgressListener) ProgressListener {
	if l == nil {
		return NoopListener{}
	}
	return l
}

// Upload copies the local file at localPath to remotePath.
func (m *Manager) Upload(ctx context.Context, localPath, remotePath string, listener ProgressListener) Result {
	listener = listenerOrNoop(listener)
	listener.OnStarted(localPath)
	start := time.Now()

	f, err := os.Open(localPath)
	if err != nil {
		result := Result{Source: localPath, Destination: remotePath, Err: fmt.Errorf("open local file: %w", err)}
		listener.OnFailed(localPath, result.Err)
		m.recordFile("upload", 0, time.Since(start), result.Err)
		return result
	}
	defer f.Close()

	info, statErr := f.Stat()
	var bytesRead int64
	reader := &countingReader{r: f, onBytes: func(n int64) {
		bytesRead += n
		listener.OnBytes(localPath, n)
	}}

	err = m.client.CopyFromSource(ctx, remotePath, reader)
	elapsed := time.Since(start)

	result := Result{
		Source:        localPath,
		Destination:   remotePath,
		Success:       err == nil,
		Err:           err,
		Bytes:         bytesRead,
		ElapsedMillis: elapsed.Milliseconds(),
	}
	if statErr == nil && result.Bytes == 0 {
		result.Bytes = info.Size()
	}

	m.recordFile("upload", result.Bytes, elapsed, err)
	if err != nil {
		listener.OnFailed(localPath, err)
	} else {
		listener.OnCompleted(localPath, result)
	}
	return result
}

// Download copies remotePath to a new local file at localPath.
func (m *Manager) Download(ctx context.Context, remotePath, localPath string, listener ProgressListener) Result {
	listener = listenerOrNoop(listener)
	listener.OnStarted(remotePath)
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		result := Result{Source: remotePath, Destination: localPath, Err: fmt.Errorf("create local directory: %w", err)}
		listener.OnFailed(remotePath, result.Err)
		return result
	}

	f, err := os.Create(localPath)
	if err != nil {
		result := Result{Source: remotePath, Destination: localPath, Err: fmt.Errorf("create local file: %w", err)}
		listener.OnFailed(remotePath, result.Err)
		m.recordFile("download", 0, time.Since(start), result.Err)
		return result
	}
	defer f.Close()

	var bytesWritten int64
	writer := &countingWriter{w: f, onBytes: func(n int64) {
		bytesWritten += n
		listener.OnBytes(remotePath, n)
	}}

	err = m.client.CopyToSink(ctx, remotePath, writer)
	elapsed := time.Since(start)

	result := Result{
		Source:        remotePath,
		Destination:   localPath,
		Success:       err == nil,
		Err:           err,
		Bytes:         bytesWritten,
		ElapsedMillis: elapsed.Milliseconds(),
	}

	m.recordFile("download", bytesWritten, elapsed, err)
	if err != nil {
		listener.OnFailed(remotePath, err)
	} else {
		listener.OnCompleted(remotePath, result)
	}
	return result
}

func (m *Manager) recordFile(operation string, bytes int64, elapsed time.Duration, err error) {
	if m.metrics == nil {
		return
	}
	m.metrics.RecordFileTransferred(operation, bytes, elapsed, err)
}

// UploadDirectory lists localDir one level deep, filters to regular
// files, and dispatches one upload per file onto the worker pool. Blocks
// until every file has been attempted, then returns a Handle whose Done
// channel is already closed and whose results are complete.
func (m *Manager) UploadDirectory(ctx context.Context, localDir, remoteDir string, listener ProgressListener) (*Handle, error) {
	entries, err := os.ReadDir(localDir)
	if err != nil {
		return nil, fmt.Errorf("list local directory %s: %w", localDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}

	jobID := m.persistJobStart(ctx, "uploadDirectory", len(files))
	h := newHandle(len(files))

	m.runPool(ctx, len(files), func(i int) {
		name := files[i]
		local := filepath.Join(localDir, name)
		remote := dfsJoin(remoteDir, name)
		if m.shouldSkip(jobID, local) {
			h.record(Result{Source: local, Destination: remote, Success: true})
			return
		}
		result := m.Upload(ctx, local, remote, listener)
		m.persistFileResult(jobID, result)
		h.record(result)
	})

	m.finishHandle(h, "uploadDirectory", jobID)
	return h, nil
}

// DownloadDirectory lists remoteDir one level deep via the coordinator,
// filters to regular files, and dispatches one download per file onto
// the worker pool.
func (m *Manager) DownloadDirectory(ctx context.Context, remoteDir, localDir string, listener ProgressListener) (*Handle, error) {
	entries, err := m.client.List(ctx, remoteDir)
	if err != nil {
		return nil, fmt.Errorf("list remote directory %s: %w", remoteDir, err)
	}

	var files []dfsclient.FileSummary
	for _, e := range entries {
		if e.IsFile() {
			files = append(files, e)
		}
	}

	jobID := m.persistJobStart(ctx, "downloadDirectory", len(files))
	h := newHandle(len(files))

	m.runPool(ctx, len(files), func(i int) {
		entry := files[i]
		local := filepath.Join(localDir, entry.BaseName)
		if m.shouldSkip(jobID, entry.Path) {
			h.record(Result{Source: entry.Path, Destination: local, Success: true})
			return
		}
		result := m.Download(ctx, entry.Path, local, listener)
		m.persistFileResult(jobID, result)
		h.record(result)
	})

	m.finishHandle(h, "downloadDirectory", jobID)
	return h, nil
}

// runPool dispatches n tasks across the fixed-size worker pool,
// blocking until every task has run. A task records its own Result; it
// never returns an error to the group so one file's failure cannot
// cancel the others.
func (m *Manager) runPool(ctx context.Context, n int, task func(i int)) {
	if n == 0 {
		return
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			task(i)
			return nil
		})
	}
	g.Wait()
}

func dfsJoin(dir, name string) string {
	joined, err := dfsclient.JoinPath(dir, name)
	if err != nil {
		return dir + "/" + name
	}
	return joined
}

// Handle is a future-like completion marker for a directory-level bulk
// transfer: per-file results accumulate as workers finish, Done closes
// once every file has been attempted.
type Handle struct {
	mu        sync.Mutex
	results   []Result
	total     int
	succeeded atomic.Int32
	failed    atomic.Int32
	done      chan struct{}
}

func newHandle(total int) *Handle {
	return &Handle{total: total, done: make(chan struct{})}
}

func (h *Handle) record(r Result) {
	h.mu.Lock()
	h.results = append(h.results, r)
	h.mu.Unlock()

	if r.Success {
		h.succeeded.Add(1)
	} else {
		h.failed.Add(1)
	}
}

// Done returns a channel closed once every dispatched file has been
// attempted.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the transfer completes and returns the accumulated
// results.
func (h *Handle) Wait() []Result {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Result, len(h.results))
	copy(out, h.results)
	return out
}

// Total is the number of files dispatched.
func (h *Handle) Total() int { return h.total }

// Succeeded is the number of files that completed successfully so far.
func (h *Handle) Succeeded() int32 { return h.succeeded.Load() }

// Failed is the number of files that failed so far.
func (h *Handle) Failed() int32 { return h.failed.Load() }

func (m *Manager) finishHandle(h *Handle, operation string, jobID string) {
	close(h.done)
	if m.metrics != nil {
		var bytes int64
		for _, r := range h.results {
			bytes += r.Bytes
		}
		m.metrics.RecordJobComplete(operation, h.total, bytes, 0, nil)
	}
	m.persistJobComplete(jobID)
}
