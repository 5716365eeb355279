// Package dfsclient implements the composite file client (C8): the
// file-system-like surface stitching together the coordinator client and
// the storage-node client to provide list, read, write, and delete
// operations over the DFS.
package dfsclient

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"strings"
	"time"

	"github.com/marmos91/dfsclient/internal/dfs/coordinator"
	"github.com/marmos91/dfsclient/internal/dfs/datanode"
	"github.com/marmos91/dfsclient/internal/dfs/proto"
	"github.com/marmos91/dfsclient/internal/logger"
	"github.com/marmos91/dfsclient/internal/telemetry"
	"github.com/marmos91/dfsclient/pkg/config"
	"github.com/marmos91/dfsclient/pkg/dfsclient/dfserr"
	"github.com/marmos91/dfsclient/pkg/metacache"
	"github.com/marmos91/dfsclient/pkg/metrics"
	metricsprom "github.com/marmos91/dfsclient/pkg/metrics/prometheus"
)

// coordinatorClient is the subset of *coordinator.Client the composite
// client depends on. Factored out so tests can substitute a fake
// coordinator without dialing a real socket.
type coordinatorClient interface {
	GetVersion(ctx context.Context) (proto.VersionResponse, error)
	List(ctx context.Context, path string) (proto.GetListingResponse, error)
	Stat(ctx context.Context, path string) (*proto.FileStatus, error)
	Mkdirs(ctx context.Context, path string, createParent bool) (*proto.FileStatus, error)
	Create(ctx context.Context, path, clientName string, createParent bool, replication uint32, blockSize uint64) (*proto.FileStatus, error)
	AddBlock(ctx context.Context, path, clientName string, fileID uint64, previous *proto.ExtendedBlock) (proto.LocatedBlock, error)
	Complete(ctx context.Context, path, clientName string, fileID uint64, last *proto.ExtendedBlock) (bool, error)
	Delete(ctx context.Context, path string, recursive bool) (bool, error)
}

// datanodeClient is the subset of *datanode.Client the composite client
// depends on, factored out for the same reason as coordinatorClient.
type datanodeClient interface {
	ReadBlock(ctx context.Context, host string, block proto.ExtendedBlock, sink io.Writer) (int64, error)
	WriteBlock(ctx context.Context, targets []proto.DatanodeInfo, block proto.ExtendedBlock, source io.Reader) (int64, error)
}

// Client is the composite DFS file client. It is safe for concurrent use
// by independent operations: the coordinator and storage-node clients it
// wraps open a fresh connection per operation.
type Client struct {
	coord       coordinatorClient
	dnClient    datanodeClient
	clientName  string
	replication uint32
	blockSize   uint64
	localMode   bool
	primaryEndpoint string
	cache       *metacache.Cache

	coordMetrics   metrics.CoordinatorMetrics
	storageMetrics metrics.StorageMetrics

	tracerShutdown   func(context.Context) error
	profilerShutdown func() error
}

func (c *Client) firstEndpoint() string {
	return c.primaryEndpoint
}

// Close releases resources the client owns outright. Coordinator and
// storage-node connections are opened and closed per operation and need
// no release here; the client-lifetime resources are the optional
// metacache's SQLite handle and, when enabled, the tracer/profiler.
func (c *Client) Close() error {
	if c.profilerShutdown != nil {
		c.profilerShutdown()
	}
	if c.tracerShutdown != nil {
		c.tracerShutdown(context.Background())
	}
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

// New builds a Client from opts. A random 16-byte client identifier is
// generated for the lifetime of the Client.
func New(opts *config.Options) (*Client, error) {
	endpoints := make([]coordinator.Endpoint, 0, len(opts.Endpoints))
	for _, raw := range opts.Endpoints {
		ep, err := coordinator.ParseEndpoint(raw)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}

	var clientID [16]byte
	if _, err := rand.Read(clientID[:]); err != nil {
		return nil, dfserr.InfrastructureError(err, "generate client identifier")
	}

	coord := coordinator.NewClient(coordinator.ClientConfig{
		Endpoints:      endpoints,
		ConnectTimeout: opts.CoordinatorConnectTimeout,
		ReadTimeout:    opts.CoordinatorReadTimeout,
		ClientID:       clientID,
		ClientName:     opts.ClientName,
	})

	dn := datanode.NewClient(opts.ClientName, opts.StorageConnectTimeout, opts.StorageReadTimeout)

	primary := ""
	if len(opts.Endpoints) > 0 {
		primary = opts.Endpoints[0]
	}

	client := &Client{
		coord:           coord,
		dnClient:        dn,
		clientName:      opts.ClientName,
		replication:     opts.Replication,
		blockSize:       uint64(opts.BlockSize),
		primaryEndpoint: primary,
	}

	if opts.Metacache.Enabled {
		cache, err := metacache.New(context.Background(), metacache.Config{
			Path: opts.Metacache.Path,
			TTL:  opts.Metacache.TTL,
		})
		if err != nil {
			return nil, dfserr.InfrastructureError(err, "open metacache")
		}
		client.cache = cache
	}

	tracerShutdown, err := telemetry.Init(context.Background(), telemetry.Config{
		Enabled:        opts.Telemetry.Enabled,
		ServiceName:    opts.ClientName,
		ServiceVersion: "dev",
		Endpoint:       opts.Telemetry.Endpoint,
		Insecure:       opts.Telemetry.Insecure,
		SampleRate:     opts.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, dfserr.InfrastructureError(err, "initialize tracer")
	}
	client.tracerShutdown = tracerShutdown

	if opts.Telemetry.Profiling.Enabled {
		profilerShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
			Enabled:        true,
			ServiceName:    opts.ClientName,
			ServiceVersion: "dev",
			Endpoint:       opts.Telemetry.Profiling.Endpoint,
			ProfileTypes:   opts.Telemetry.Profiling.ProfileTypes,
		})
		if err != nil {
			return nil, dfserr.InfrastructureError(err, "start continuous profiling")
		}
		client.profilerShutdown = profilerShutdown
	}

	metrics.InitRegistry(opts.Metrics.Enabled)
	client.WithMetrics(metricsprom.NewCoordinatorMetrics(), metricsprom.NewStorageMetrics(), metricsprom.NewMetacacheMetrics())

	return client, nil
}

// WithMetrics attaches metrics sinks; any may be nil to disable.
func (c *Client) WithMetrics(coordMetrics metrics.CoordinatorMetrics, storageMetrics metrics.StorageMetrics, metacacheMetrics metrics.MetacacheMetrics) *Client {
	c.coordMetrics = coordMetrics
	c.storageMetrics = storageMetrics
	if c.cache != nil && metacacheMetrics != nil {
		c.cache.WithMetrics(metacacheMetrics)
	}
	return c
}

// WithLocalMode rewrites every replica hostname from coordinator metadata
// to localhost, for clients that can only reach storage nodes via a
// published address rather than the cluster-internal hostname.
func (c *Client) WithLocalMode(enabled bool) *Client {
	c.localMode = enabled
	return c
}

// withCoordSpan wraps a coordinator RPC in a trace span named after
// method, recording any returned error on the span before it ends. When
// tracing is disabled this costs one no-op span.
func (c *Client) withCoordSpan(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartCoordinatorSpan(ctx, method, 0)
	defer span.End()
	err := fn(ctx)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

// withStorageSpan wraps a storage-node block operation in a trace span.
func (c *Client) withStorageSpan(ctx context.Context, operation string, blockID uint64, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartStorageSpan(ctx, operation, int64(blockID))
	defer span.End()
	err := fn(ctx)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (c *Client) recordCoordCall(method, endpoint string, start time.Time, err error) {
	if c.coordMetrics == nil {
		return
	}
	errorCode := ""
	if e, ok := dfserr.AsError(err); ok {
		errorCode = e.Kind.String()
	}
	c.coordMetrics.RecordCall(method, endpoint, time.Since(start), errorCode)
}

func (c *Client) recordStorageOp(operation string, start time.Time, err error) {
	if c.storageMetrics == nil {
		return
	}
	c.storageMetrics.ObserveOperation(operation, time.Since(start), err)
}

// List returns the immediate children of path.
func (c *Client) List(ctx context.Context, path string) ([]FileSummary, error) {
	if err := RequireAbsolutePath(path); err != nil {
		return nil, err
	}
	if cached, ok := c.cachedListing(ctx, path); ok {
		return cached, nil
	}

	start := time.Now()
	var resp proto.GetListingResponse
	err := c.withCoordSpan(ctx, "getListing", func(ctx context.Context) error {
		var err error
		resp, err = c.coord.List(ctx, path)
		return err
	})
	c.recordCoordCall("getListing", c.firstEndpoint(), start, err)
	if err != nil {
		return nil, err
	}
	out := make([]FileSummary, 0, len(resp.Entries))
	for _, fs := range resp.Entries {
		out = append(out, summaryFromWire(fs))
	}
	c.cacheListing(ctx, path, out)

	var buf bytes.Buffer
	PrintListing(&buf, out)
	logger.DebugCtx(ctx, "listed directory", "path", path, "entries", len(out), "table", buf.String())

	return out, nil
}

// ReadAttributes stats path, raising NotFound when it is absent.
func (c *Client) ReadAttributes(ctx context.Context, path string) (FileSummary, error) {
	if err := RequireAbsolutePath(path); err != nil {
		return FileSummary{}, err
	}
	if cached, ok := c.cachedStat(ctx, path); ok {
		return cached, nil
	}

	var fs *proto.FileStatus
	err := c.withCoordSpan(ctx, "getFileInfo", func(ctx context.Context) error {
		var err error
		fs, err = c.coord.Stat(ctx, path)
		return err
	})
	if err != nil {
		return FileSummary{}, err
	}
	if fs == nil {
		return FileSummary{}, dfserr.NotFoundError(path)
	}
	summary := summaryFromWire(*fs)
	c.cacheStat(ctx, summary)
	return summary, nil
}

// CreateDirectory creates path as a single directory; its parent must
// already exist.
func (c *Client) CreateDirectory(ctx context.Context, path string) (FileSummary, error) {
	return c.mkdir(ctx, path, false)
}

// CreateDirectories creates path and every missing ancestor.
func (c *Client) CreateDirectories(ctx context.Context, path string) (FileSummary, error) {
	return c.mkdir(ctx, path, true)
}

func (c *Client) mkdir(ctx context.Context, path string, createParent bool) (FileSummary, error) {
	if err := RequireAbsolutePath(path); err != nil {
		return FileSummary{}, err
	}
	var fs *proto.FileStatus
	err := c.withCoordSpan(ctx, "mkdirs", func(ctx context.Context) error {
		var err error
		fs, err = c.coord.Mkdirs(ctx, path, createParent)
		return err
	})
	if err != nil {
		return FileSummary{}, err
	}
	if fs == nil {
		return FileSummary{}, dfserr.Newf(dfserr.Infrastructure, "mkdirs succeeded but getFileInfo found nothing for %s", path)
	}
	c.invalidateCache(ctx, "mkdirs", path)
	return summaryFromWire(*fs), nil
}

// Delete removes path non-recursively; fails if a directory is non-empty.
func (c *Client) Delete(ctx context.Context, path string) error {
	if err := RequireAbsolutePath(path); err != nil {
		return err
	}
	var ok bool
	err := c.withCoordSpan(ctx, "delete", func(ctx context.Context) error {
		var err error
		ok, err = c.coord.Delete(ctx, path, false)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return dfserr.Newf(dfserr.Infrastructure, "delete failed for %s", path)
	}
	c.invalidateCache(ctx, "delete", path)
	return nil
}

// DeleteIfExists attempts delete; on failure it consults Stat to decide
// whether the path was already absent (returns false, no error) or the
// delete genuinely failed (returns an Infrastructure error).
func (c *Client) DeleteIfExists(ctx context.Context, path string) (bool, error) {
	if err := RequireAbsolutePath(path); err != nil {
		return false, err
	}
	err := c.Delete(ctx, path)
	if err == nil {
		return true, nil
	}

	fs, statErr := c.coord.Stat(ctx, path)
	if statErr != nil {
		return false, dfserr.Wrap(dfserr.Infrastructure, err, "delete failed and stat could not confirm absence")
	}
	if fs == nil {
		return false, nil
	}
	return false, dfserr.Wrap(dfserr.Infrastructure, err, "delete failed for "+path)
}

// CopyToSink reads the entirety of path, a file, into sink.
func (c *Client) CopyToSink(ctx context.Context, path string, sink io.Writer) error {
	if err := RequireAbsolutePath(path); err != nil {
		return err
	}

	var fs *proto.FileStatus
	err := c.withCoordSpan(ctx, "getFileInfo", func(ctx context.Context) error {
		var err error
		fs, err = c.coord.Stat(ctx, path)
		return err
	})
	if err != nil {
		return err
	}
	if fs == nil {
		return dfserr.NotFoundError(path)
	}
	if fs.FileType == proto.WireKindDirectory {
		return dfserr.InvalidArgumentError("cannot read a directory as a file: " + path)
	}

	summary := summaryFromWire(*fs)
	if len(summary.Blocks) == 0 && summary.Length == 0 {
		return nil
	}

	var buf bytes.Buffer
	PrintBlockLocations(&buf, summary)
	logger.DebugCtx(ctx, "resolved block locations", "path", path, "blocks", len(summary.Blocks), "table", buf.String())

	for _, block := range summary.Blocks {
		if err := c.readBlockFromAnyReplica(ctx, block, sink); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) readBlockFromAnyReplica(ctx context.Context, block BlockLocation, sink io.Writer) error {
	replicas := block.Replicas
	if c.localMode {
		rewritten := make([]ReplicaEndpoint, len(replicas))
		for i, r := range replicas {
			rewritten[i] = ReplicaEndpoint{Name: rewriteHostLocal(r.Name), UUID: r.UUID, TopologyPath: r.TopologyPath}
		}
		replicas = rewritten
	}

	extBlock := extendedBlockFromLocation(block)
	var lastErr error
	for _, r := range replicas {
		start := time.Now()
		err := c.withStorageSpan(ctx, "read", block.BlockID, func(ctx context.Context) error {
			_, err := c.dnClient.ReadBlock(ctx, r.Name, extBlock, sink)
			return err
		})
		c.recordStorageOp("readBlock", start, err)
		if err == nil {
			return nil
		}
		if dfserr.Is(err, dfserr.CallerStream) {
			return err
		}
		lastErr = err
	}
	return dfserr.Wrap(dfserr.Infrastructure, lastErr, "all replicas failed for block")
}

// CopyFromSource writes the entirety of source to a new file at path.
// path must not already exist.
func (c *Client) CopyFromSource(ctx context.Context, path string, source io.Reader) error {
	if err := RequireAbsolutePath(path); err != nil {
		return err
	}

	var existing *proto.FileStatus
	err := c.withCoordSpan(ctx, "getFileInfo", func(ctx context.Context) error {
		var err error
		existing, err = c.coord.Stat(ctx, path)
		return err
	})
	if err != nil {
		return err
	}
	if existing != nil {
		return dfserr.Newf(dfserr.Infrastructure, "path already exists: %s", path)
	}

	var created *proto.FileStatus
	err = c.withCoordSpan(ctx, "create", func(ctx context.Context) error {
		var err error
		created, err = c.coord.Create(ctx, path, c.clientName, true, c.replication, c.blockSize)
		return err
	})
	if err != nil {
		return err
	}
	if created == nil {
		return dfserr.Newf(dfserr.Infrastructure, "create returned no file status for %s", path)
	}
	fileID := created.FileID

	br := bufio.NewReaderSize(source, MaxPeekBuffer)

	var located proto.LocatedBlock
	err = c.withCoordSpan(ctx, "addBlock", func(ctx context.Context) error {
		var err error
		located, err = c.coord.AddBlock(ctx, path, c.clientName, fileID, nil)
		return err
	})
	if err != nil {
		return err
	}
	current := blockFromWire(located)

	// wroteFirstBlock gates the peek-driven end-of-input check: the block
	// allocated above must be streamed at least once even when source is
	// already exhausted, so it gets its mandatory empty/last=true packet.
	var bytesWritten int64
	wroteFirstBlock := false
	for {
		if wroteFirstBlock {
			peek, peekErr := br.Peek(1)
			if len(peek) == 0 {
				if peekErr != nil && peekErr != io.EOF {
					return dfserr.CallerStreamError(peekErr, "peek source")
				}
				break
			}

			if bytesWritten%int64(c.blockSize) == 0 {
				extPrev := extendedBlockFromLocation(current)
				extPrev.NumBytes = uint64(current.Length)
				err = c.withCoordSpan(ctx, "addBlock", func(ctx context.Context) error {
					var err error
					located, err = c.coord.AddBlock(ctx, path, c.clientName, fileID, &extPrev)
					return err
				})
				if err != nil {
					return err
				}
				current = blockFromWire(located)
			}
		}

		limit := int64(c.blockSize) - (bytesWritten % int64(c.blockSize))
		limited := io.LimitReader(br, limit)

		targets := datanodeInfosFromReplicas(current.Replicas, c.localMode)
		extBlock := extendedBlockFromLocation(current)
		start := time.Now()
		var n int64
		werr := c.withStorageSpan(ctx, "write", current.BlockID, func(ctx context.Context) error {
			var err error
			n, err = c.dnClient.WriteBlock(ctx, targets, extBlock, limited)
			return err
		})
		c.recordStorageOp("writeBlock", start, werr)
		bytesWritten += n
		current.Length += n
		wroteFirstBlock = true
		if werr != nil {
			return werr
		}
	}

	lastBlock := extendedBlockFromLocation(current)
	lastBlock.NumBytes = uint64(current.Length)
	var ok bool
	err = c.withCoordSpan(ctx, "complete", func(ctx context.Context) error {
		var err error
		ok, err = c.coord.Complete(ctx, path, c.clientName, fileID, &lastBlock)
		return err
	})
	if err != nil {
		return err
	}
	if !ok {
		return dfserr.Newf(dfserr.Infrastructure, "complete failed for %s", path)
	}
	c.invalidateCache(ctx, "create", path)
	return nil
}

// MaxPeekBuffer sizes the look-ahead buffer CopyFromSource uses to detect
// end-of-input precisely without consuming the byte it peeks.
const MaxPeekBuffer = 4096

// ReadAllBytes reads path, a file, in full.
func (c *Client) ReadAllBytes(ctx context.Context, path string) ([]byte, error) {
	if err := RequireAbsolutePath(path); err != nil {
		return nil, err
	}
	fs, err := c.coord.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if fs == nil {
		return nil, dfserr.NotFoundError(path)
	}
	if fs.FileType == proto.WireKindDirectory {
		return nil, dfserr.InvalidArgumentError("cannot read a directory as a file: " + path)
	}

	buf := bytes.NewBuffer(make([]byte, 0, fs.Length))
	if err := c.CopyToSink(ctx, path, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadAllLines reads path, decodes it with decode, and splits on
// \r?\n, removing any trailing empty element.
func (c *Client) ReadAllLines(ctx context.Context, path string, decode func([]byte) (string, error)) ([]string, error) {
	data, err := c.ReadAllBytes(ctx, path)
	if err != nil {
		return nil, err
	}

	text, err := decode(data)
	if err != nil {
		return nil, dfserr.CallerStreamError(err, "decode file contents")
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// GetVersion queries the coordinator's build identity.
func (c *Client) GetVersion(ctx context.Context) (ServerInfo, error) {
	var resp proto.VersionResponse
	err := c.withCoordSpan(ctx, "getVersion", func(ctx context.Context) error {
		var err error
		resp, err = c.coord.GetVersion(ctx)
		return err
	})
	if err != nil {
		return ServerInfo{}, err
	}
	return ServerInfo{
		BuildVersion:    resp.BuildVersion,
		BlockPoolID:     resp.BlockPoolID,
		SoftwareVersion: resp.SoftwareVersion,
		Capabilities:    resp.Capabilities,
	}, nil
}
