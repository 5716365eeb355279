package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context that flows through a
// single coordinator RPC or storage-node operation without being threaded
// through every function signature.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	Endpoint  string    // coordinator endpoint the call is bound to
	Method    string    // RPC method name, once known
	CallID    int32     // per-connection call id, once allocated
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext attached.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext bound to an endpoint.
func NewLogContext(endpoint string) *LogContext {
	return &LogContext{
		Endpoint:  endpoint,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		Endpoint:  lc.Endpoint,
		Method:    lc.Method,
		CallID:    lc.CallID,
		StartTime: lc.StartTime,
	}
}

// WithMethod returns a copy with the RPC method and call id set.
func (lc *LogContext) WithMethod(method string, callID int32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Method = method
		clone.CallID = callID
	}
	return clone
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
