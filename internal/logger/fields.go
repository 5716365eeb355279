package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so aggregation and
// querying tools can rely on a stable schema.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// RPC & Transport
	// ========================================================================
	KeyEndpoint     = "endpoint"      // dfs://host:port the operation targeted
	KeyMethod       = "method"        // coordinator RPC method name (getListing, create, addBlock, ...)
	KeyCallID       = "call_id"       // monotonic per-connection RPC call id
	KeyConnectionID = "connection_id" // opaque identifier for a TCP connection
	KeyAttempt      = "attempt"       // 1-based endpoint retry attempt
	KeyMaxAttempts  = "max_attempts"  // total endpoints configured

	// ========================================================================
	// File System Operations
	// ========================================================================
	KeyPath = "path" // absolute DFS path
	KeyType = "type" // file, directory, symlink
	KeySize = "size" // file length in bytes
	KeyMode = "mode" // permission bits

	// ========================================================================
	// Block & Pipeline Operations
	// ========================================================================
	KeyBlockPool   = "block_pool"   // block pool id
	KeyBlockID     = "block_id"     // block id within the pool
	KeyGenStamp    = "gen_stamp"    // block generation stamp
	KeyReplica     = "replica"      // storage node host:port serving a block replica
	KeyOffset      = "offset"       // byte offset within a block or file
	KeySeqno       = "seqno"        // data packet sequence number
	KeyLastPacket  = "last_packet"  // whether a packet is the final one in a block
	KeyPacketBytes = "packet_bytes" // payload bytes carried by a single data packet

	// ========================================================================
	// I/O Operations
	// ========================================================================
	KeyBytesRead    = "bytes_read"    // actual bytes read
	KeyBytesWritten = "bytes_written" // actual bytes written

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
	KeyErrorKind  = "error_kind"  // taxonomy kind: infrastructure, not_found, caller_stream, invalid_argument
	KeySource     = "source"      // metacache, coordinator, etc.

	// ========================================================================
	// Bulk Transfer
	// ========================================================================
	KeyJobID     = "job_id"     // bulk transfer job identifier
	KeyFileCount = "file_count" // files dispatched in a bulk operation
)

// TraceID returns a slog.Attr for the OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for the OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Endpoint returns a slog.Attr for the coordinator endpoint URI.
func Endpoint(e string) slog.Attr { return slog.String(KeyEndpoint, e) }

// Method returns a slog.Attr for the coordinator RPC method name.
func Method(m string) slog.Attr { return slog.String(KeyMethod, m) }

// CallID returns a slog.Attr for the per-connection RPC call id.
func CallID(id int32) slog.Attr { return slog.Int(KeyCallID, int(id)) }

// ConnectionID returns a slog.Attr for a connection identifier.
func ConnectionID(id string) slog.Attr { return slog.String(KeyConnectionID, id) }

// Attempt returns a slog.Attr group for the current endpoint retry attempt.
func Attempt(n, max int) slog.Attr {
	return slog.Group("endpoint_attempt",
		slog.Int(KeyAttempt, n),
		slog.Int(KeyMaxAttempts, max),
	)
}

// Path returns a slog.Attr for an absolute DFS path.
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// Size returns a slog.Attr for a file length.
func Size(s int64) slog.Attr { return slog.Int64(KeySize, s) }

// BlockID returns a slog.Attr group identifying a block.
func BlockID(poolID string, blockID, genStamp int64) slog.Attr {
	return slog.Group("block",
		slog.String(KeyBlockPool, poolID),
		slog.Int64(KeyBlockID, blockID),
		slog.Int64(KeyGenStamp, genStamp),
	)
}

// Replica returns a slog.Attr for the storage node host currently in use.
func Replica(hostPort string) slog.Attr { return slog.String(KeyReplica, hostPort) }

// Offset returns a slog.Attr for a byte offset.
func Offset(off int64) slog.Attr { return slog.Int64(KeyOffset, off) }

// Seqno returns a slog.Attr for a data packet sequence number.
func Seqno(n int32) slog.Attr { return slog.Int(KeySeqno, int(n)) }

// LastPacket returns a slog.Attr for the final-packet-in-block flag.
func LastPacket(last bool) slog.Attr { return slog.Bool(KeyLastPacket, last) }

// PacketBytes returns a slog.Attr for a packet's payload length.
func PacketBytes(n int) slog.Attr { return slog.Int(KeyPacketBytes, n) }

// BytesRead returns a slog.Attr for bytes read.
func BytesRead(n int64) slog.Attr { return slog.Int64(KeyBytesRead, n) }

// BytesWritten returns a slog.Attr for bytes written.
func BytesWritten(n int64) slog.Attr { return slog.Int64(KeyBytesWritten, n) }

// DurationMs returns a slog.Attr for an operation duration.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error, or a no-op attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorKind returns a slog.Attr for the error taxonomy kind.
func ErrorKind(kind fmt.Stringer) slog.Attr { return slog.String(KeyErrorKind, kind.String()) }

// Source returns a slog.Attr identifying where a result came from.
func Source(src string) slog.Attr { return slog.String(KeySource, src) }

// JobID returns a slog.Attr for a bulk transfer job id.
func JobID(id string) slog.Attr { return slog.String(KeyJobID, id) }

// FileCount returns a slog.Attr for a dispatched file count.
func FileCount(n int) slog.Attr { return slog.Int(KeyFileCount, n) }
