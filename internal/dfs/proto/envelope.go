package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// RpcKind and RpcOp are pinned to the single value this client ever sends:
// protocol-buffer payloads framed as one final packet per call.
const (
	RpcKindProtocolBuffer = 2
	RpcOpFinalPacket      = 0
)

// ConnectionContextCallID is the reserved call id used for the synthetic
// connection-context message sent once per connection, immediately after
// the handshake length-prefix.
const ConnectionContextCallID = -3

// RpcStatus values found in an RpcResponseHeader.
const (
	RpcStatusSuccess = 0
	RpcStatusError   = 1
	RpcStatusFatal   = 2
)

// RpcRequestHeader precedes every request body, including the synthetic
// connection-context call.
type RpcRequestHeader struct {
	RpcKind    int32
	RpcOp      int32
	CallID     int32
	ClientID   []byte
	RetryCount int32
}

func (h RpcRequestHeader) Marshal() []byte {
	var b []byte
	b = appendVarintAlways(b, 1, uint64(h.RpcKind))
	b = appendVarintAlways(b, 2, uint64(h.RpcOp))
	b = appendSVarintAlways(b, 3, int64(h.CallID))
	b = appendBytes(b, 4, h.ClientID)
	b = appendSVarint(b, 5, int64(h.RetryCount))
	return b
}

func (h *RpcRequestHeader) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			h.RpcKind = int32(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			h.RpcOp = int32(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(b)
			h.CallID = int32(protowire.DecodeZigZag(v))
			return n, err
		case 4:
			v, n, err := consumeBytes(b)
			h.ClientID = v
			return n, err
		case 5:
			v, n, err := consumeVarint(b)
			h.RetryCount = int32(protowire.DecodeZigZag(v))
			return n, err
		default:
			return -1, nil
		}
	})
}

// RequestHeader names the method, protocol, and protocol version a call
// body should be dispatched against.
type RequestHeader struct {
	MethodName      string
	DeclaringProtocol string
	ProtocolVersion uint64
}

func (h RequestHeader) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, h.MethodName)
	b = appendString(b, 2, h.DeclaringProtocol)
	b = appendVarintAlways(b, 3, h.ProtocolVersion)
	return b
}

func (h *RequestHeader) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(b)
			h.MethodName = v
			return n, err
		case 2:
			v, n, err := consumeString(b)
			h.DeclaringProtocol = v
			return n, err
		case 3:
			v, n, err := consumeVarint(b)
			h.ProtocolVersion = v
			return n, err
		default:
			return -1, nil
		}
	})
}

// ConnectionContext carries the caller's identity and the target protocol
// name; sent once, immediately following the handshake's request header.
type ConnectionContext struct {
	EffectiveUser string
	RealUser      string // empty unless acting on behalf of another user
	Protocol      string
}

func (c ConnectionContext) Marshal() []byte {
	var userInfo []byte
	userInfo = appendString(userInfo, 1, c.EffectiveUser)
	userInfo = appendString(userInfo, 2, c.RealUser)

	var b []byte
	b = appendMessage(b, 2, userInfo)
	b = appendString(b, 3, c.Protocol)
	return b
}

func (c *ConnectionContext) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 2:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			err = walkFields(v, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				switch num {
				case 1:
					s, n, err := consumeString(b)
					c.EffectiveUser = s
					return n, err
				case 2:
					s, n, err := consumeString(b)
					c.RealUser = s
					return n, err
				default:
					return -1, nil
				}
			})
			return n, err
		case 3:
			v, n, err := consumeString(b)
			c.Protocol = v
			return n, err
		default:
			return -1, nil
		}
	})
}

// RpcResponseHeader is the first length-delimited message in every
// response frame.
type RpcResponseHeader struct {
	CallID           int32
	Status           int32
	ExceptionClass   string
	ErrorMsg         string
}

func (h *RpcResponseHeader) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			h.CallID = int32(protowire.DecodeZigZag(v))
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			h.Status = int32(v)
			return n, err
		case 3:
			v, n, err := consumeString(b)
			h.ExceptionClass = v
			return n, err
		case 4:
			v, n, err := consumeString(b)
			h.ErrorMsg = v
			return n, err
		default:
			return -1, nil
		}
	})
}

func (h RpcResponseHeader) Marshal() []byte {
	var b []byte
	b = appendSVarintAlways(b, 1, int64(h.CallID))
	b = appendVarintAlways(b, 2, uint64(h.Status))
	b = appendString(b, 3, h.ExceptionClass)
	b = appendString(b, 4, h.ErrorMsg)
	return b
}

// errUnexpectedEnd is returned when a length-delimited buffer runs out of
// bytes mid-field.
var errUnexpectedEnd = fmt.Errorf("proto: unexpected end of buffer")
