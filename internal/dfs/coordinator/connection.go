// Package coordinator implements the coordinator connection (C3) and
// coordinator client (C5): dialing and handshaking with the metadata
// node, and the eight metadata operations built on top of the RPC framer.
package coordinator

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/marmos91/dfsclient/internal/dfs/proto"
	"github.com/marmos91/dfsclient/internal/dfs/rpc"
	"github.com/marmos91/dfsclient/pkg/dfsclient/dfserr"
)

const (
	handshakeMagic        = "hrpc"
	handshakeVersion byte = 9
	serviceClassProtoBuf  byte = 0
	authSelectorSimple    byte = 0
)

// Endpoint is a parsed dfs://host:port coordinator address.
type Endpoint struct {
	Host string
	Port int
}

// String renders the endpoint back as a dfs:// URI.
func (e Endpoint) String() string {
	return fmt.Sprintf("dfs://%s:%d", e.Host, e.Port)
}

// ParseEndpoint validates a coordinator endpoint URI: scheme=dfs,
// non-empty host, positive port.
func ParseEndpoint(raw string) (Endpoint, error) {
	const prefix = "dfs://"
	if !strings.HasPrefix(raw, prefix) {
		return Endpoint{}, dfserr.InvalidArgumentError("coordinator endpoint must use the dfs:// scheme: " + raw)
	}
	rest := strings.TrimPrefix(raw, prefix)
	host, portStr, err := net.SplitHostPort(rest)
	if err != nil {
		return Endpoint{}, dfserr.Wrap(dfserr.InvalidArgument, err, "malformed coordinator endpoint: "+raw)
	}
	if host == "" {
		return Endpoint{}, dfserr.InvalidArgumentError("coordinator endpoint host must not be empty: " + raw)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return Endpoint{}, dfserr.InvalidArgumentError("coordinator endpoint port must be positive: " + raw)
	}
	return Endpoint{Host: host, Port: port}, nil
}

// Options configures connection timeouts and client identity.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ClientID       []byte
	EffectiveUser  string
	RealUser       string
}

// Connection owns one coordinator socket: the handshake has already run
// by the time Connect returns, and a fresh CallIDGenerator is ready for
// framed calls. Close releases the socket on every exit path.
type Connection struct {
	conn    net.Conn
	opts    Options
	CallIDs rpc.CallIDGenerator
}

// Connect dials endpoint, performs the handshake (magic, version, service
// class, auth selector, then the length-delimited request-header +
// connection-context pair), and returns a ready-to-use Connection.
func Connect(ctx context.Context, endpoint Endpoint, opts Options) (*Connection, error) {
	dialer := net.Dialer{Timeout: opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(endpoint.Host, strconv.Itoa(endpoint.Port)))
	if err != nil {
		return nil, dfserr.InfrastructureError(err, "dial coordinator "+endpoint.String())
	}

	c := &Connection{conn: conn, opts: opts}
	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Connection) handshake() error {
	reqHeader := proto.RpcRequestHeader{
		RpcKind:    proto.RpcKindProtocolBuffer,
		RpcOp:      proto.RpcOpFinalPacket,
		CallID:     proto.ConnectionContextCallID,
		ClientID:   c.opts.ClientID,
		RetryCount: -1,
	}
	connCtx := proto.ConnectionContext{
		EffectiveUser: c.opts.EffectiveUser,
		RealUser:      c.opts.RealUser,
		Protocol:      rpc.ClientProtocolName,
	}

	reqHeaderBytes := reqHeader.Marshal()
	connCtxBytes := connCtx.Marshal()

	payload := make([]byte, 0, len(reqHeaderBytes)+len(connCtxBytes)+20)
	payload = appendDelimited(payload, reqHeaderBytes)
	payload = appendDelimited(payload, connCtxBytes)

	frame := make([]byte, 0, len(handshakeMagic)+3+4+len(payload))
	frame = append(frame, handshakeMagic...)
	frame = append(frame, handshakeVersion, serviceClassProtoBuf, authSelectorSimple)
	frame = appendUint32BE(frame, uint32(len(payload)))
	frame = append(frame, payload...)

	if _, err := c.conn.Write(frame); err != nil {
		return dfserr.InfrastructureError(err, "write coordinator handshake")
	}
	return nil
}

func appendDelimited(dst []byte, msg []byte) []byte {
	var lenBuf [10]byte
	n := putUvarint(lenBuf[:], uint64(len(msg)))
	dst = append(dst, lenBuf[:n]...)
	return append(dst, msg...)
}

func putUvarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

func appendUint32BE(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Call sends one framed request over the connection and decodes the
// response into the provided method-specific decoder. ctx cancellation
// aborts an in-flight write or read promptly by closing the socket.
func (c *Connection) Call(ctx context.Context, protocolName, methodName string, body rpc.Marshaler, decode func([]byte) error) error {
	if c.opts.ReadTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
	}

	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	callID := c.CallIDs.Next()
	frame := rpc.EncodeRequest(c.opts.ClientID, callID, protocolName, methodName, body)
	if _, err := c.conn.Write(frame); err != nil {
		if ctx.Err() != nil {
			return dfserr.Wrap(dfserr.Infrastructure, ctx.Err(), "coordinator request canceled")
		}
		return dfserr.InfrastructureError(err, "write coordinator request")
	}

	respBody, err := rpc.DecodeResponse(c.conn)
	if err != nil {
		if ctx.Err() != nil {
			return dfserr.Wrap(dfserr.Infrastructure, ctx.Err(), "coordinator request canceled")
		}
		return err
	}
	if decode == nil {
		return nil
	}
	if err := decode(respBody); err != nil {
		return dfserr.InfrastructureError(err, "decode coordinator response")
	}
	return nil
}

// Close releases the underlying socket.
func (c *Connection) Close() error {
	return c.conn.Close()
}
