package proto

import "google.golang.org/protobuf/encoding/protowire"

// Data-transfer protocol constants pinned to the single reference server
// generation this client targets.
const (
	DataTransferVersion = 28

	OpWriteBlock = 0x50
	OpReadBlock  = 0x51

	BlockOpStatusSuccess = 0
	BlockOpStatusError   = 1

	StagePipelineSetupCreate = 0

	ChecksumTypeCRC32    = 1
	DefaultBytesPerChecksum = 512

	CachingStrategyDefault = 0
)

// BaseHeader identifies the block an operation targets.
type BaseHeader struct {
	Block ExtendedBlock
}

func (h BaseHeader) Marshal() []byte {
	return appendMessage(nil, 1, h.Block.Marshal())
}

func (h *BaseHeader) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			return n, h.Block.Unmarshal(v)
		default:
			return -1, nil
		}
	})
}

// ClientOperationHeader extends BaseHeader with the requesting client's
// name, used to identify the writer that owns a pipeline.
type ClientOperationHeader struct {
	Base       BaseHeader
	ClientName string
}

func (h ClientOperationHeader) Marshal() []byte {
	var b []byte
	b = appendMessage(b, 1, h.Base.Marshal())
	b = appendString(b, 2, h.ClientName)
	return b
}

func (h *ClientOperationHeader) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			return n, h.Base.Unmarshal(v)
		case 2:
			s, n, err := consumeString(b)
			h.ClientName = s
			return n, err
		default:
			return -1, nil
		}
	})
}

// ChecksumProto describes the checksum scheme a write pipeline will use.
type ChecksumProto struct {
	Type             uint32
	BytesPerChecksum uint32
}

func (c ChecksumProto) Marshal() []byte {
	var b []byte
	b = appendVarintAlways(b, 1, uint64(c.Type))
	b = appendVarintAlways(b, 2, uint64(c.BytesPerChecksum))
	return b
}

func (c *ChecksumProto) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			c.Type = uint32(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			c.BytesPerChecksum = uint32(v)
			return n, err
		default:
			return -1, nil
		}
	})
}

// OpReadBlockProto is the op-specific message following the base header
// when requesting a block read.
type OpReadBlockProto struct {
	Header        ClientOperationHeader
	Offset        uint64
	Len           uint64
	SendChecksums bool
}

func (r OpReadBlockProto) Marshal() []byte {
	var b []byte
	b = appendMessage(b, 1, r.Header.Marshal())
	b = appendVarintAlways(b, 2, r.Offset)
	b = appendVarintAlways(b, 3, r.Len)
	// sendChecksums defaults true in proto3; this design always sends
	// false, so the field must be emitted explicitly even though it is
	// the zero value.
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, boolVarint(r.SendChecksums))
	return b
}

func boolVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// OpWriteBlockProto is the op-specific message following the base header
// when setting up a write pipeline.
type OpWriteBlockProto struct {
	Header               ClientOperationHeader
	Targets              []DatanodeInfo
	Stage                uint32
	PipelineSize         uint32
	MinBytesRcvd         uint64
	MaxBytesRcvd         uint64
	LatestGenerationStamp uint64
	RequestedChecksum    ChecksumProto
}

func (w OpWriteBlockProto) Marshal() []byte {
	var b []byte
	b = appendMessage(b, 1, w.Header.Marshal())
	for _, t := range w.Targets {
		b = appendMessage(b, 2, t.Marshal())
	}
	b = appendVarintAlways(b, 3, uint64(w.Stage))
	b = appendVarintAlways(b, 4, uint64(w.PipelineSize))
	b = appendVarint(b, 5, w.MinBytesRcvd)
	b = appendVarint(b, 6, w.MaxBytesRcvd)
	b = appendVarintAlways(b, 7, w.LatestGenerationStamp)
	b = appendMessage(b, 8, w.RequestedChecksum.Marshal())
	return b
}

// BlockOpResponseProto is the node's reply to a read-block or write-block
// request, preceding any packet stream.
type BlockOpResponseProto struct {
	Status       int32
	FirstBadLink string
	Message      string
}

func (r BlockOpResponseProto) Marshal() []byte {
	var b []byte
	b = appendVarintAlways(b, 1, uint64(r.Status))
	b = appendString(b, 2, r.FirstBadLink)
	b = appendString(b, 3, r.Message)
	return b
}

func (r *BlockOpResponseProto) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			r.Status = int32(v)
			return n, err
		case 2:
			s, n, err := consumeString(b)
			r.FirstBadLink = s
			return n, err
		case 3:
			s, n, err := consumeString(b)
			r.Message = s
			return n, err
		default:
			return -1, nil
		}
	})
}

// PacketHeader is the length-delimited message embedded in each data
// packet, immediately after HLEN.
type PacketHeader struct {
	OffsetInBlock uint64
	SeqNo         int64
	LastPacketInBlock bool
	DataLen       uint32
	SyncBlock     bool
}

func (h PacketHeader) Marshal() []byte {
	var b []byte
	b = appendVarintAlways(b, 1, h.OffsetInBlock)
	b = appendSVarintAlways(b, 2, h.SeqNo)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, boolVarint(h.LastPacketInBlock))
	b = appendVarintAlways(b, 4, uint64(h.DataLen))
	b = appendBool(b, 5, h.SyncBlock)
	return b
}

func (h *PacketHeader) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			h.OffsetInBlock = v
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			h.SeqNo = protowire.DecodeZigZag(v)
			return n, err
		case 3:
			v, n, err := consumeVarint(b)
			h.LastPacketInBlock = v != 0
			return n, err
		case 4:
			v, n, err := consumeVarint(b)
			h.DataLen = uint32(v)
			return n, err
		case 5:
			v, n, err := consumeVarint(b)
			h.SyncBlock = v != 0
			return n, err
		default:
			return -1, nil
		}
	})
}

// PipelineAckProto acknowledges one data packet; ReplyList carries one
// status per pipeline member, in replica order.
type PipelineAckProto struct {
	SeqNo     int64
	ReplyList []int32
}

func (a PipelineAckProto) Marshal() []byte {
	var b []byte
	b = appendSVarintAlways(b, 1, a.SeqNo)
	for _, r := range a.ReplyList {
		b = appendVarintAlways(b, 2, uint64(r))
	}
	return b
}

func (a *PipelineAckProto) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			a.SeqNo = protowire.DecodeZigZag(v)
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			a.ReplyList = append(a.ReplyList, int32(v))
			return n, err
		default:
			return -1, nil
		}
	})
}
