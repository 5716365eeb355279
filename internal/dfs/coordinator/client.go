package coordinator

import (
	"context"
	"time"

	"github.com/marmos91/dfsclient/internal/dfs/proto"
	"github.com/marmos91/dfsclient/internal/dfs/rpc"
	"github.com/marmos91/dfsclient/pkg/dfsclient/dfserr"
)

// Defaults per the reference server generation this client targets.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
)

// ClientConfig configures a Client's endpoints, timeouts, and identity.
type ClientConfig struct {
	Endpoints      []Endpoint
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ClientID       [16]byte
	ClientName     string
	EffectiveUser  string
	RealUser       string
}

// Client exposes the coordinator's metadata operations. It opens one
// connection per operation (the simplest correct profile per the design's
// concurrency model) and retries across configured endpoints.
type Client struct {
	cfg ClientConfig
}

// NewClient builds a Client from cfg, filling in default timeouts when
// unset.
func NewClient(cfg ClientConfig) *Client {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	return &Client{cfg: cfg}
}

func (c *Client) connOpts() Options {
	return Options{
		ConnectTimeout: c.cfg.ConnectTimeout,
		ReadTimeout:    c.cfg.ReadTimeout,
		ClientID:       c.cfg.ClientID[:],
		EffectiveUser:  c.cfg.EffectiveUser,
		RealUser:       c.cfg.RealUser,
	}
}

// withEndpoints runs op against each configured endpoint in order.
// NotFound is never retried and is returned immediately; any other error
// advances to the next endpoint; if every endpoint fails, the last error
// is wrapped as Infrastructure.
func (c *Client) withEndpoints(ctx context.Context, op func(conn *Connection) error) error {
	if len(c.cfg.Endpoints) == 0 {
		return dfserr.InfrastructureError(nil, "no coordinator endpoints configured")
	}

	var lastErr error
	for _, ep := range c.cfg.Endpoints {
		conn, err := Connect(ctx, ep, c.connOpts())
		if err != nil {
			lastErr = err
			continue
		}

		err = op(conn)
		conn.Close()
		if err == nil {
			return nil
		}
		if dfserr.Is(err, dfserr.NotFound) {
			return err
		}
		lastErr = err
	}

	return dfserr.Wrap(dfserr.Infrastructure, lastErr, "all coordinator endpoints exhausted")
}

// GetVersion queries the coordinator's build identity using the
// coordinator-internal protocol.
func (c *Client) GetVersion(ctx context.Context) (proto.VersionResponse, error) {
	var resp proto.VersionResponse
	err := c.withEndpoints(ctx, func(conn *Connection) error {
		return conn.Call(ctx, rpc.InternalProtocolName, rpc.VersionRequestMethod, proto.VersionRequest{}, resp.Unmarshal)
	})
	return resp, err
}

// List returns the immediate children of path, truncated at the
// coordinator's default page size.
func (c *Client) List(ctx context.Context, path string) (proto.GetListingResponse, error) {
	req := proto.GetListingRequest{Src: path, StartAfter: nil, NeedLocation: true}
	var resp proto.GetListingResponse
	err := c.withEndpoints(ctx, func(conn *Connection) error {
		return conn.Call(ctx, rpc.ClientProtocolName, "getListing", req, resp.Unmarshal)
	})
	return resp, err
}

// Stat returns path's metadata, or a nil FileStatus when the coordinator
// reports no entry for it (the semantic not-found signal; Stat itself
// does not raise NotFound — callers at the composite-client boundary do).
func (c *Client) Stat(ctx context.Context, path string) (*proto.FileStatus, error) {
	req := proto.GetFileInfoRequest{Src: path}
	var resp proto.GetFileInfoResponse
	err := c.withEndpoints(ctx, func(conn *Connection) error {
		return conn.Call(ctx, rpc.ClientProtocolName, "getFileInfo", req, resp.Unmarshal)
	})
	if err != nil {
		return nil, err
	}
	return resp.FileStatus, nil
}

// Mkdirs creates path as a directory, first sending mkdirs and then
// issuing getFileInfo to return the created directory's metadata.
func (c *Client) Mkdirs(ctx context.Context, path string, createParent bool) (*proto.FileStatus, error) {
	req := proto.MkdirsRequest{Src: path, Masked: 0755, CreateParent: createParent}
	var resp proto.MkdirsResponse
	err := c.withEndpoints(ctx, func(conn *Connection) error {
		return conn.Call(ctx, rpc.ClientProtocolName, "mkdirs", req, resp.Unmarshal)
	})
	if err != nil {
		return nil, err
	}
	if !resp.Result {
		return nil, dfserr.Newf(dfserr.Infrastructure, "mkdirs failed for %s", path)
	}
	return c.Stat(ctx, path)
}

// Create allocates a new file entry with no blocks yet.
func (c *Client) Create(ctx context.Context, path, clientName string, createParent bool, replication uint32, blockSize uint64) (*proto.FileStatus, error) {
	req := proto.CreateRequest{
		Src:          path,
		Masked:       0644,
		ClientName:   clientName,
		CreateFlag:   proto.CreateFlagCreate,
		CreateParent: createParent,
		Replication:  replication,
		BlockSize:    blockSize,
	}
	var resp proto.CreateResponse
	err := c.withEndpoints(ctx, func(conn *Connection) error {
		return conn.Call(ctx, rpc.ClientProtocolName, "create", req, resp.Unmarshal)
	})
	if err != nil {
		return nil, err
	}
	return resp.FileStatus, nil
}

// AddBlock requests a new block for fileID. When previous is non-nil it
// is sent as the prior block's final descriptor, implicitly closing it.
func (c *Client) AddBlock(ctx context.Context, path, clientName string, fileID uint64, previous *proto.ExtendedBlock) (proto.LocatedBlock, error) {
	req := proto.AddBlockRequest{Src: path, ClientName: clientName, FileID: fileID, Previous: previous}
	var resp proto.AddBlockResponse
	err := c.withEndpoints(ctx, func(conn *Connection) error {
		return conn.Call(ctx, rpc.ClientProtocolName, "addBlock", req, resp.Unmarshal)
	})
	return resp.Block, err
}

// Complete closes the write session for fileID; last carries the tail
// block's caller-authoritative length.
func (c *Client) Complete(ctx context.Context, path, clientName string, fileID uint64, last *proto.ExtendedBlock) (bool, error) {
	req := proto.CompleteRequest{Src: path, ClientName: clientName, FileID: fileID, Last: last}
	var resp proto.CompleteResponse
	err := c.withEndpoints(ctx, func(conn *Connection) error {
		return conn.Call(ctx, rpc.ClientProtocolName, "complete", req, resp.Unmarshal)
	})
	return resp.Result, err
}

// Delete removes path. Non-recursive deletes fail if the target
// directory is non-empty.
func (c *Client) Delete(ctx context.Context, path string, recursive bool) (bool, error) {
	req := proto.DeleteRequest{Src: path, Recursive: recursive}
	var resp proto.DeleteResponse
	err := c.withEndpoints(ctx, func(conn *Connection) error {
		return conn.Call(ctx, rpc.ClientProtocolName, "delete", req, resp.Unmarshal)
	})
	return resp.Result, err
}
