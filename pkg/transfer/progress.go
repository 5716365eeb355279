package transfer

import "io"

// ProgressListener receives lifecycle events for one file-level transfer.
// Implementations must be safe for concurrent use: a worker-pool transfer
// calls these from multiple goroutines, one per in-flight file.
type ProgressListener interface {
	// OnStarted fires once a worker picks up source for transfer.
	OnStarted(source string)

	// OnBytes fires as bytes flow through the transfer; n is the number
	// of bytes in this increment, not a running total.
	OnBytes(source string, n int64)

	// OnCompleted fires once a transfer succeeds.
	OnCompleted(source string, result Result)

	// OnFailed fires once a transfer fails.
	OnFailed(source string, err error)
}

// NoopListener implements ProgressListener with no-op methods, the
// default when a caller supplies none.
type NoopListener struct{}

func (NoopListener) OnStarted(string)          {}
func (NoopListener) OnBytes(string, int64)     {}
func (NoopListener) OnCompleted(string, Result) {}
func (NoopListener) OnFailed(string, error)    {}

// countingReader wraps an io.Reader, reporting each chunk read through
// onBytes so a ProgressListener can track streamed bytes without the
// transfer core needing to know about listeners.
type countingReader struct {
	r       io.Reader
	onBytes func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.onBytes != nil {
		c.onBytes(int64(n))
	}
	return n, err
}

// countingWriter wraps an io.Writer the same way, for downloads.
type countingWriter struct {
	w       io.Writer
	onBytes func(int64)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 && c.onBytes != nil {
		c.onBytes(int64(n))
	}
	return n, err
}
