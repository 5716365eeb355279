// Package proto hand-encodes the protocol-buffer messages exchanged with
// the coordinator and storage nodes. There is no .proto source: message
// shapes are fixed by the wire protocol this client speaks, so the wire
// code is written directly against google.golang.org/protobuf/encoding/protowire
// rather than generated from a schema.
package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// appendString appends a length-delimited string field, skipping it entirely
// when empty (proto3 field-presence-by-omission for scalar defaults).
func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendVarintAlways(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSVarint(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func appendSVarintAlways(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

// appendMessage appends an embedded, length-delimited sub-message. A nil
// payload omits the field.
func appendMessage(b []byte, num protowire.Number, payload []byte) []byte {
	if payload == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

// fieldVisitor is invoked once per top-level field encountered while
// walking a message buffer. It returns the number of bytes the field's
// value occupied, or -1 if it does not recognise the type and wants the
// generic skip logic to handle it.
type fieldVisitor func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error)

// walkFields parses b as a sequence of tag-prefixed fields, invoking visit
// for each. Unknown fields are skipped via protowire.ConsumeFieldValue.
func walkFields(b []byte, visit fieldVisitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("proto: invalid tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		consumed, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if consumed < 0 {
			consumed = protowire.ConsumeFieldValue(num, typ, b)
			if consumed < 0 {
				return fmt.Errorf("proto: invalid field %d: %w", num, protowire.ParseError(consumed))
			}
		}
		b = b[consumed:]
	}
	return nil
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, fmt.Errorf("proto: invalid string: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("proto: invalid bytes: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("proto: invalid varint: %w", protowire.ParseError(n))
	}
	return v, n, nil
}
