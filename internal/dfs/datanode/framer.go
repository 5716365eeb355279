// Package datanode implements the storage-node framer (C6) and
// storage-node client (C7): the data-transfer protocol used to stream
// block contents to and from storage nodes.
package datanode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/marmos91/dfsclient/internal/dfs/proto"
	"github.com/marmos91/dfsclient/pkg/dfsclient/dfserr"
)

// writeEnvelope writes the data-transfer request envelope: u16 version,
// one operation code byte, then the length-delimited operation message.
func writeEnvelope(w io.Writer, op byte, message []byte) error {
	var hdr [3]byte
	binary.BigEndian.PutUint16(hdr[:2], proto.DataTransferVersion)
	hdr[2] = op
	if _, err := w.Write(hdr[:]); err != nil {
		return dfserr.InfrastructureError(err, "write data-transfer envelope")
	}

	var lenBuf [10]byte
	n := putUvarint(lenBuf[:], uint64(len(message)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return dfserr.InfrastructureError(err, "write op message length")
	}
	if _, err := w.Write(message); err != nil {
		return dfserr.InfrastructureError(err, "write op message")
	}
	return nil
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
			return 0, fmt.Errorf("datanode: varint too long")
		}
	}
}

// readBlockOpResponse reads the length-delimited block-op-response that
// follows every envelope. A non-success status becomes an Infrastructure
// error carrying the node's status and text.
func readBlockOpResponse(r io.Reader) (proto.BlockOpResponseProto, error) {
	var resp proto.BlockOpResponseProto

	msgLen, err := readUvarint(r)
	if err != nil {
		return resp, dfserr.InfrastructureError(err, "read block-op-response length")
	}
	buf := make([]byte, msgLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return resp, dfserr.InfrastructureError(err, "read block-op-response")
	}
	if err := resp.Unmarshal(buf); err != nil {
		return resp, dfserr.InfrastructureError(err, "decode block-op-response")
	}
	if resp.Status != proto.BlockOpStatusSuccess {
		return resp, dfserr.Newf(dfserr.Infrastructure, "storage node rejected operation: %s", resp.Message)
	}
	return resp, nil
}

// writePacket writes one data packet in the asymmetric wire format:
// PLEN(u32 BE, self-inclusive of checksums+data, excluding HLEN/HEADER) |
// HLEN(u16 BE) | HEADER | CHECKSUMS | DATA.
func writePacket(w io.Writer, header proto.PacketHeader, checksums []uint32, data []byte) error {
	headerBytes := header.Marshal()
	if len(headerBytes) > 0xFFFF {
		return dfserr.Newf(dfserr.Infrastructure, "packet header too large: %d bytes", len(headerBytes))
	}

	plen := 4 + len(checksums)*4 + len(data)

	buf := make([]byte, 0, 4+2+len(headerBytes)+len(checksums)*4+len(data))
	buf = appendUint32BE(buf, uint32(plen))
	buf = appendUint16BE(buf, uint16(len(headerBytes)))
	buf = append(buf, headerBytes...)
	for _, cs := range checksums {
		buf = appendUint32BE(buf, cs)
	}
	buf = append(buf, data...)

	if _, err := w.Write(buf); err != nil {
		return dfserr.InfrastructureError(err, "write data packet")
	}
	return nil
}

// readPacket reads one data packet and returns its header and payload
// (checksums, when present, are validated for framing only — this design
// does not verify checksum values on read).
func readPacket(r io.Reader) (proto.PacketHeader, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return proto.PacketHeader{}, nil, dfserr.InfrastructureError(err, "read packet PLEN")
	}
	plen := binary.BigEndian.Uint32(lenBuf[:])

	var hlenBuf [2]byte
	if _, err := io.ReadFull(r, hlenBuf[:]); err != nil {
		return proto.PacketHeader{}, nil, dfserr.InfrastructureError(err, "read packet HLEN")
	}
	hlen := binary.BigEndian.Uint16(hlenBuf[:])

	headerBytes := make([]byte, hlen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return proto.PacketHeader{}, nil, dfserr.InfrastructureError(err, "read packet header")
	}

	var header proto.PacketHeader
	if err := header.Unmarshal(headerBytes); err != nil {
		return proto.PacketHeader{}, nil, dfserr.InfrastructureError(err, "decode packet header")
	}

	// PLEN covers its own 4 bytes plus checksums plus data, not HLEN/header.
	if plen < 4 {
		return proto.PacketHeader{}, nil, dfserr.Newf(dfserr.Infrastructure, "invalid packet PLEN %d", plen)
	}
	remaining := int(plen) - 4
	numChecksums := ceilDiv(int(header.DataLen), proto.DefaultBytesPerChecksum)
	checksumBytes := numChecksums * 4
	if remaining == int(header.DataLen) {
		// The sender omitted checksums (e.g. a read requested with
		// sendChecksums=false): PLEN covers only the data.
		checksumBytes = 0
	}
	if checksumBytes > remaining {
		return proto.PacketHeader{}, nil, dfserr.Newf(dfserr.Infrastructure, "packet checksum length exceeds PLEN")
	}

	if checksumBytes > 0 {
		skip := make([]byte, checksumBytes)
		if _, err := io.ReadFull(r, skip); err != nil {
			return proto.PacketHeader{}, nil, dfserr.InfrastructureError(err, "read packet checksums")
		}
	}

	dataLen := remaining - checksumBytes
	data := make([]byte, dataLen)
	if dataLen > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return proto.PacketHeader{}, nil, dfserr.InfrastructureError(err, "read packet data")
		}
	}

	return header, data, nil
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func appendUint32BE(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint16BE(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// writeAck writes a length-delimited pipeline-ack.
func writeAck(w io.Writer, ack proto.PipelineAckProto) error {
	msg := ack.Marshal()
	var lenBuf [10]byte
	n := putUvarint(lenBuf[:], uint64(len(msg)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return dfserr.InfrastructureError(err, "write pipeline ack length")
	}
	if _, err := w.Write(msg); err != nil {
		return dfserr.InfrastructureError(err, "write pipeline ack")
	}
	return nil
}

// readAck reads a length-delimited pipeline-ack and verifies its sequence
// number matches wantSeqNo and that every reply status is success.
func readAck(r io.Reader, wantSeqNo int64) error {
	msgLen, err := readUvarint(r)
	if err != nil {
		return dfserr.InfrastructureError(err, "read pipeline ack length")
	}
	buf := make([]byte, msgLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return dfserr.InfrastructureError(err, "read pipeline ack")
	}

	var ack proto.PipelineAckProto
	if err := ack.Unmarshal(buf); err != nil {
		return dfserr.InfrastructureError(err, "decode pipeline ack")
	}
	if ack.SeqNo != wantSeqNo {
		return dfserr.Newf(dfserr.Infrastructure, "pipeline ack seqno %d does not match sent seqno %d", ack.SeqNo, wantSeqNo)
	}
	for _, status := range ack.ReplyList {
		if status != proto.BlockOpStatusSuccess {
			return dfserr.Newf(dfserr.Infrastructure, "pipeline ack reported failure status %d", status)
		}
	}
	return nil
}
