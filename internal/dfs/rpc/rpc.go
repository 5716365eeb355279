// Package rpc implements the coordinator RPC framer (C4): request/response
// envelope encoding, call-id allocation, and method-name derivation. It
// knows nothing about sockets or handshakes — those live in
// internal/dfs/coordinator, which uses this package to frame each call.
package rpc

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/marmos91/dfsclient/internal/dfs/proto"
	"github.com/marmos91/dfsclient/pkg/dfsclient/dfserr"
)

// Protocol names and versions pinned to the reference server generation
// this client targets. Everything except getVersion goes over Client;
// getVersion is the only operation that uses Internal.
const (
	ClientProtocolName   = "org.apache.hadoop.hdfs.protocol.ClientProtocol"
	InternalProtocolName = "org.apache.hadoop.hdfs.server.protocol.NamenodeProtocol"
	ProtocolVersion      = 1
)

// Marshaler is any request body this framer can encode.
type Marshaler interface {
	Marshal() []byte
}

// CallIDGenerator allocates monotonically increasing, per-connection call
// ids starting at 0, using an atomic counter as required by the
// concurrency model (serialised encoding on a single connection, but the
// counter itself must still be safe for pooled-connection designs).
type CallIDGenerator struct {
	next atomic.Int32
}

// Next returns the next call id.
func (g *CallIDGenerator) Next() int32 {
	return g.next.Add(1) - 1
}

// EncodeRequest builds the full framed payload for one call: the 32-bit
// big-endian length prefix followed by the three length-delimited inner
// messages (rpc-header, request-header, body).
func EncodeRequest(clientID []byte, callID int32, protocolName string, methodName string, body Marshaler) []byte {
	rpcHeader := proto.RpcRequestHeader{
		RpcKind:    proto.RpcKindProtocolBuffer,
		RpcOp:      proto.RpcOpFinalPacket,
		CallID:     callID,
		ClientID:   clientID,
		RetryCount: 0,
	}
	reqHeader := proto.RequestHeader{
		MethodName:        methodName,
		DeclaringProtocol: protocolName,
		ProtocolVersion:   ProtocolVersion,
	}

	rpcHeaderBytes := rpcHeader.Marshal()
	reqHeaderBytes := reqHeader.Marshal()
	bodyBytes := body.Marshal()

	inner := make([]byte, 0, lenDelimSize(rpcHeaderBytes)+lenDelimSize(reqHeaderBytes)+lenDelimSize(bodyBytes))
	inner = appendLenDelimited(inner, rpcHeaderBytes)
	inner = appendLenDelimited(inner, reqHeaderBytes)
	inner = appendLenDelimited(inner, bodyBytes)

	out := make([]byte, 4, 4+len(inner))
	binary.BigEndian.PutUint32(out, uint32(len(inner)))
	return append(out, inner...)
}

func lenDelimSize(b []byte) int {
	return binary.MaxVarintLen64 + len(b)
}

func appendLenDelimited(dst []byte, msg []byte) []byte {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(msg)))
	dst = append(dst, lenBuf[:n]...)
	return append(dst, msg...)
}

func readUvarint(r io.Reader) (uint64, error) {
	var b [1]byte
	var result uint64
	var shift uint
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		result |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("rpc: varint too long")
		}
	}
}

// DecodeResponse reads one length-prefixed response frame from r, parses
// the rpc-response-header, and returns the remaining bytes (the typed
// response body) for the caller to decode against the expected type. A
// non-success status is translated into an Infrastructure error.
func DecodeResponse(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, dfserr.InfrastructureError(err, "read response length")
	}
	frameLen := int32(binary.BigEndian.Uint32(lenBuf[:]))
	if frameLen <= 0 {
		return nil, dfserr.InfrastructureError(fmt.Errorf("frame length %d", frameLen), "invalid response frame length")
	}

	frame := make([]byte, frameLen)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, dfserr.InfrastructureError(err, "read response frame")
	}

	headerLen, n, err := consumeUvarintPrefix(frame)
	if err != nil {
		return nil, dfserr.InfrastructureError(err, "parse response header length")
	}
	frame = frame[n:]
	if int(headerLen) > len(frame) {
		return nil, dfserr.InfrastructureError(fmt.Errorf("header length %d exceeds frame", headerLen), "malformed response frame")
	}

	var header proto.RpcResponseHeader
	if err := header.Unmarshal(frame[:headerLen]); err != nil {
		return nil, dfserr.InfrastructureError(err, "decode response header")
	}
	rest := frame[headerLen:]

	if header.Status != proto.RpcStatusSuccess {
		msg := header.ErrorMsg
		if header.ExceptionClass != "" {
			msg = fmt.Sprintf("%s: %s", header.ExceptionClass, msg)
		}
		return nil, dfserr.Newf(dfserr.Infrastructure, "coordinator call failed: %s", msg)
	}

	return rest, nil
}

func consumeUvarintPrefix(b []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i, c := range b {
		result |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, fmt.Errorf("varint too long")
		}
	}
	return 0, 0, fmt.Errorf("truncated varint")
}

// DeriveMethodName computes the RPC method name from a request type's
// short name by stripping a trailing "Request" and/or "Proto" and
// lowercasing the first letter. getVersion uses the literal
// "versionRequest" instead, by convention of the reference server.
func DeriveMethodName(typeName string) string {
	name := typeName
	name = strings.TrimSuffix(name, "Proto")
	name = strings.TrimSuffix(name, "Request")
	if name == "" {
		return typeName
	}
	return strings.ToLower(name[:1]) + name[1:]
}

const VersionRequestMethod = "versionRequest"
