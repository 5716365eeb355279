package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for DFS client operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Endpoint / connection attributes
	// ========================================================================
	AttrEndpoint     = "dfs.endpoint"      // coordinator endpoint dialed
	AttrConnectionID = "dfs.connection_id" // opaque TCP connection identifier
	AttrAttempt      = "dfs.attempt"       // 1-based endpoint retry attempt
	AttrMaxAttempts  = "dfs.max_attempts"  // total endpoints configured

	// ========================================================================
	// RPC attributes (coordinator protocol)
	// ========================================================================
	AttrRPCMethod = "rpc.method" // coordinator RPC method name
	AttrRPCCallID = "rpc.call_id"

	// ========================================================================
	// File system attributes (protocol-agnostic)
	// ========================================================================
	AttrPath      = "fs.path"      // absolute DFS path
	AttrType      = "fs.type"      // file, directory, symlink
	AttrSize      = "fs.size"      // file length in bytes
	AttrMode      = "fs.mode"      // permission bits
	AttrBytesRead = "fs.bytes_read"
	AttrBytesWrit = "fs.bytes_written"

	// ========================================================================
	// Block / pipeline attributes
	// ========================================================================
	AttrBlockPool = "block.pool_id"
	AttrBlockID   = "block.id"
	AttrGenStamp  = "block.gen_stamp"
	AttrReplica   = "block.replica"
	AttrOffset    = "block.offset"
	AttrSeqno     = "block.seqno"
	AttrLastBlock = "block.last_packet"

	// ========================================================================
	// Bulk transfer attributes
	// ========================================================================
	AttrJobID     = "transfer.job_id"
	AttrFileCount = "transfer.file_count"

	// ========================================================================
	// Cache attributes
	// ========================================================================
	AttrCacheHit    = "cache.hit"
	AttrCacheSource = "cache.source"
)

// Span names for operations.
const (
	// Coordinator RPCs
	SpanCoordinatorList     = "coordinator.getListing"
	SpanCoordinatorStat     = "coordinator.getFileInfo"
	SpanCoordinatorMkdir    = "coordinator.mkdirs"
	SpanCoordinatorCreate   = "coordinator.create"
	SpanCoordinatorAddBlock = "coordinator.addBlock"
	SpanCoordinatorComplete = "coordinator.complete"
	SpanCoordinatorDelete   = "coordinator.delete"
	SpanCoordinatorVersion  = "coordinator.getVersion"

	// Storage-node data transfer
	SpanStorageRead  = "storage.read"
	SpanStorageWrite = "storage.write"

	// Bulk transfer manager
	SpanTransferUpload   = "transfer.upload"
	SpanTransferDownload = "transfer.download"

	// Metadata cache
	SpanCacheLookup = "cache.lookup"
	SpanCacheWrite  = "cache.write"
	SpanCacheEvict  = "cache.evict"
)

// Endpoint returns an attribute for the coordinator endpoint.
func Endpoint(e string) attribute.KeyValue {
	return attribute.String(AttrEndpoint, e)
}

// RPCMethod returns an attribute for the coordinator RPC method name.
func RPCMethod(method string) attribute.KeyValue {
	return attribute.String(AttrRPCMethod, method)
}

// RPCCallID returns an attribute for the per-connection RPC call id.
func RPCCallID(id int32) attribute.KeyValue {
	return attribute.Int64(AttrRPCCallID, int64(id))
}

// Path returns an attribute for an absolute DFS path.
func Path(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// Size returns an attribute for a file length.
func Size(size int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, size)
}

// BlockID returns an attribute for a block id within a pool.
func BlockID(blockID int64) attribute.KeyValue {
	return attribute.Int64(AttrBlockID, blockID)
}

// GenStamp returns an attribute for a block generation stamp.
func GenStamp(gs int64) attribute.KeyValue {
	return attribute.Int64(AttrGenStamp, gs)
}

// Replica returns an attribute for the storage node host serving a block.
func Replica(hostPort string) attribute.KeyValue {
	return attribute.String(AttrReplica, hostPort)
}

// Offset returns an attribute for a byte offset.
func Offset(off int64) attribute.KeyValue {
	return attribute.Int64(AttrOffset, off)
}

// Seqno returns an attribute for a data packet sequence number.
func Seqno(n int32) attribute.KeyValue {
	return attribute.Int64(AttrSeqno, int64(n))
}

// JobID returns an attribute for a bulk transfer job id.
func JobID(id string) attribute.KeyValue {
	return attribute.String(AttrJobID, id)
}

// FileCount returns an attribute for a dispatched file count.
func FileCount(n int) attribute.KeyValue {
	return attribute.Int(AttrFileCount, n)
}

// CacheHit returns an attribute for cache hit indicator.
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// CacheSource returns an attribute for cache source.
func CacheSource(source string) attribute.KeyValue {
	return attribute.String(AttrCacheSource, source)
}

// ReplicaHex formats a byte slice identifier (e.g. a block pool id token) as hex.
func ReplicaHex(id []byte) attribute.KeyValue {
	return attribute.String(AttrBlockPool, fmt.Sprintf("%x", id))
}

// StartCoordinatorSpan starts a span for a coordinator RPC method.
func StartCoordinatorSpan(ctx context.Context, method string, callID int32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		RPCMethod(method),
		RPCCallID(callID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "coordinator."+method, trace.WithAttributes(allAttrs...))
}

// StartStorageSpan starts a span for a storage-node data transfer operation.
func StartStorageSpan(ctx context.Context, operation string, blockID int64, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		BlockID(blockID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "storage."+operation, trace.WithAttributes(allAttrs...))
}

// StartTransferSpan starts a span for a bulk transfer job operation.
func StartTransferSpan(ctx context.Context, operation string, jobID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		JobID(jobID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "transfer."+operation, trace.WithAttributes(allAttrs...))
}

// StartCacheSpan starts a span for a metadata cache operation.
func StartCacheSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "cache."+operation, trace.WithAttributes(attrs...))
}
