package datanode

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/marmos91/dfsclient/internal/dfs/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePacket_PLENExcludesHLENAndHeader(t *testing.T) {
	t.Parallel()
	header := proto.PacketHeader{OffsetInBlock: 0, SeqNo: 0, DataLen: 512}
	checksums := []uint32{0xDEADBEEF}
	data := bytes.Repeat([]byte{0x42}, 512)

	var buf bytes.Buffer
	require.NoError(t, writePacket(&buf, header, checksums, data))

	out := buf.Bytes()
	plen := binary.BigEndian.Uint32(out[0:4])
	hlen := binary.BigEndian.Uint16(out[4:6])

	headerBytes := header.Marshal()
	assert.EqualValues(t, len(headerBytes), hlen, "HLEN must be exactly the header bytes")
	assert.EqualValues(t, 4+len(checksums)*4+len(data), plen, "PLEN is self-inclusive of its own 4 bytes plus checksums plus data, excluding HLEN/header")

	wantTotalLen := 4 + 2 + len(headerBytes) + len(checksums)*4 + len(data)
	assert.Equal(t, wantTotalLen, len(out))
}

func TestPacket_WriteThenReadRoundTrip(t *testing.T) {
	t.Parallel()
	header := proto.PacketHeader{OffsetInBlock: 1024, SeqNo: 3, DataLen: 10, LastPacketInBlock: false}
	checksums := []uint32{1}
	data := []byte("0123456789")

	var buf bytes.Buffer
	require.NoError(t, writePacket(&buf, header, checksums, data))

	gotHeader, gotData, err := readPacket(&buf)
	require.NoError(t, err)
	assert.Equal(t, header.OffsetInBlock, gotHeader.OffsetInBlock)
	assert.Equal(t, header.SeqNo, gotHeader.SeqNo)
	assert.Equal(t, header.DataLen, gotHeader.DataLen)
	assert.Equal(t, data, gotData)
}

func TestPacket_LastPacketIsZeroLengthEOFMarker(t *testing.T) {
	t.Parallel()
	header := proto.PacketHeader{OffsetInBlock: 2048, SeqNo: 9, DataLen: 0, LastPacketInBlock: true}

	var buf bytes.Buffer
	require.NoError(t, writePacket(&buf, header, nil, nil))

	gotHeader, gotData, err := readPacket(&buf)
	require.NoError(t, err)
	assert.True(t, gotHeader.LastPacketInBlock)
	assert.Empty(t, gotData)
}

func TestPacket_ChecksumCountIsCeilDivByChunkSize(t *testing.T) {
	t.Parallel()
	// 1000 bytes of data with the 512-byte chunk size needs 2 checksums
	// (one full chunk, one short final chunk).
	data := bytes.Repeat([]byte{0x01}, 1000)
	checksums := make([]uint32, ceilDiv(len(data), proto.DefaultBytesPerChecksum))
	require.Len(t, checksums, 2)

	header := proto.PacketHeader{DataLen: uint32(len(data))}

	var buf bytes.Buffer
	require.NoError(t, writePacket(&buf, header, checksums, data))

	_, gotData, err := readPacket(&buf)
	require.NoError(t, err)
	assert.Equal(t, data, gotData)
}

func TestReadPacket_RejectsChecksumLengthExceedingPLEN(t *testing.T) {
	t.Parallel()
	// Craft a frame whose declared DataLen implies more checksum bytes
	// than PLEN actually carries.
	header := proto.PacketHeader{DataLen: 2000} // implies 4 checksums = 16 bytes
	headerBytes := header.Marshal()

	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], 4) // PLEN says only 0 bytes of payload beyond itself
	buf.Write(lenBuf[:])
	var hlenBuf [2]byte
	binary.BigEndian.PutUint16(hlenBuf[:], uint16(len(headerBytes)))
	buf.Write(hlenBuf[:])
	buf.Write(headerBytes)

	_, _, err := readPacket(&buf)
	assert.Error(t, err)
}

func TestAck_WriteThenReadRoundTrip(t *testing.T) {
	t.Parallel()
	ack := proto.PipelineAckProto{SeqNo: 5, ReplyList: []int32{proto.BlockOpStatusSuccess, proto.BlockOpStatusSuccess}}

	var buf bytes.Buffer
	require.NoError(t, writeAck(&buf, ack))

	require.NoError(t, readAck(&buf, 5))
}

func TestReadAck_RejectsSeqNoMismatch(t *testing.T) {
	t.Parallel()
	ack := proto.PipelineAckProto{SeqNo: 5, ReplyList: []int32{proto.BlockOpStatusSuccess}}

	var buf bytes.Buffer
	require.NoError(t, writeAck(&buf, ack))

	err := readAck(&buf, 6)
	assert.Error(t, err)
}

func TestReadAck_RejectsAnyFailureStatus(t *testing.T) {
	t.Parallel()
	ack := proto.PipelineAckProto{SeqNo: 1, ReplyList: []int32{proto.BlockOpStatusSuccess, proto.BlockOpStatusError}}

	var buf bytes.Buffer
	require.NoError(t, writeAck(&buf, ack))

	err := readAck(&buf, 1)
	assert.Error(t, err)
}

func TestWriteEnvelope_EncodesVersionAndOpCode(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeEnvelope(&buf, proto.OpReadBlock, []byte("msg")))

	out := buf.Bytes()
	assert.EqualValues(t, proto.DataTransferVersion, binary.BigEndian.Uint16(out[0:2]))
	assert.Equal(t, byte(proto.OpReadBlock), out[2])
}

func TestReadBlockOpResponse_NonSuccessBecomesInfrastructureError(t *testing.T) {
	t.Parallel()
	resp := proto.BlockOpResponseProto{Status: proto.BlockOpStatusError, Message: "checksum mismatch"}
	msg := resp.Marshal()

	var buf bytes.Buffer
	var lenBuf [10]byte
	n := putUvarint(lenBuf[:], uint64(len(msg)))
	buf.Write(lenBuf[:n])
	buf.Write(msg)

	_, err := readBlockOpResponse(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}
