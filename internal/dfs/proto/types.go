package proto

import "google.golang.org/protobuf/encoding/protowire"

// ExtendedBlock identifies one block within its block pool, plus the
// client's running view of its length and its generation stamp.
type ExtendedBlock struct {
	PoolID          string
	BlockID         uint64
	NumBytes        uint64
	GenerationStamp uint64
}

func (e ExtendedBlock) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, e.PoolID)
	b = appendVarintAlways(b, 2, e.BlockID)
	b = appendVarintAlways(b, 3, e.GenerationStamp)
	b = appendVarint(b, 4, e.NumBytes)
	return b
}

func (e *ExtendedBlock) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(b)
			e.PoolID = v
			return n, err
		case 2:
			v, n, err := consumeVarint(b)
			e.BlockID = v
			return n, err
		case 3:
			v, n, err := consumeVarint(b)
			e.GenerationStamp = v
			return n, err
		case 4:
			v, n, err := consumeVarint(b)
			e.NumBytes = v
			return n, err
		default:
			return -1, nil
		}
	})
}

// DatanodeInfo describes one storage-node endpoint as reported in block
// location lists.
type DatanodeInfo struct {
	Name         string // host:port of the data transfer endpoint
	UUID         string
	TopologyPath string
}

func (d DatanodeInfo) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, d.Name)
	b = appendString(b, 2, d.UUID)
	b = appendString(b, 3, d.TopologyPath)
	return b
}

func (d *DatanodeInfo) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeString(b)
			d.Name = v
			return n, err
		case 2:
			v, n, err := consumeString(b)
			d.UUID = v
			return n, err
		case 3:
			v, n, err := consumeString(b)
			d.TopologyPath = v
			return n, err
		default:
			return -1, nil
		}
	})
}

// LocatedBlock pairs an ExtendedBlock with the replicas holding it and the
// block's offset within its file.
type LocatedBlock struct {
	Block    ExtendedBlock
	Offset   uint64
	Replicas []DatanodeInfo
}

func (l LocatedBlock) Marshal() []byte {
	var b []byte
	b = appendMessage(b, 1, l.Block.Marshal())
	b = appendVarint(b, 2, l.Offset)
	for _, r := range l.Replicas {
		b = appendMessage(b, 3, r.Marshal())
	}
	return b
}

func (l *LocatedBlock) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			return n, l.Block.Unmarshal(v)
		case 2:
			v, n, err := consumeVarint(b)
			l.Offset = v
			return n, err
		case 3:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			var d DatanodeInfo
			if err := d.Unmarshal(v); err != nil {
				return 0, err
			}
			l.Replicas = append(l.Replicas, d)
			return n, nil
		default:
			return -1, nil
		}
	})
}

// File kinds as carried on the wire; mirrors dfsclient.Kind but kept
// independent since the wire encoding is a protocol detail.
const (
	WireKindFile      = 1
	WireKindDirectory = 2
	WireKindSymlink   = 3
)

// FileStatus is the coordinator's wire representation of one path entry.
type FileStatus struct {
	FileType        int32
	Path            []byte
	Length          uint64
	Permission      uint32
	Owner           string
	Group           string
	ModTime         uint64
	AccessTime      uint64
	SymlinkTarget   []byte
	BlockReplication uint32
	BlockSize       uint64
	FileID          uint64
	ChildrenNum     int32
	StoragePolicy   uint32
	Flags           uint32
	Namespace       string
	Locations       *LocatedBlocks
}

func (f FileStatus) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(f.FileType))
	b = appendBytes(b, 2, f.Path)
	b = appendVarint(b, 3, f.Length)
	b = appendVarintAlways(b, 4, uint64(f.Permission))
	b = appendString(b, 5, f.Owner)
	b = appendString(b, 6, f.Group)
	b = appendVarint(b, 7, f.ModTime)
	b = appendVarint(b, 8, f.AccessTime)
	b = appendBytes(b, 9, f.SymlinkTarget)
	b = appendVarint(b, 10, uint64(f.BlockReplication))
	b = appendVarint(b, 11, f.BlockSize)
	b = appendVarintAlways(b, 12, f.FileID)
	b = appendVarint(b, 13, uint64(f.ChildrenNum))
	b = appendVarint(b, 14, uint64(f.StoragePolicy))
	b = appendVarint(b, 15, uint64(f.Flags))
	b = appendString(b, 16, f.Namespace)
	if f.Locations != nil {
		b = appendMessage(b, 17, f.Locations.Marshal())
	}
	return b
}

func (f *FileStatus) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			f.FileType = int32(v)
			return n, err
		case 2:
			v, n, err := consumeBytes(b)
			f.Path = v
			return n, err
		case 3:
			v, n, err := consumeVarint(b)
			f.Length = v
			return n, err
		case 4:
			v, n, err := consumeVarint(b)
			f.Permission = uint32(v)
			return n, err
		case 5:
			v, n, err := consumeString(b)
			f.Owner = v
			return n, err
		case 6:
			v, n, err := consumeString(b)
			f.Group = v
			return n, err
		case 7:
			v, n, err := consumeVarint(b)
			f.ModTime = v
			return n, err
		case 8:
			v, n, err := consumeVarint(b)
			f.AccessTime = v
			return n, err
		case 9:
			v, n, err := consumeBytes(b)
			f.SymlinkTarget = v
			return n, err
		case 10:
			v, n, err := consumeVarint(b)
			f.BlockReplication = uint32(v)
			return n, err
		case 11:
			v, n, err := consumeVarint(b)
			f.BlockSize = v
			return n, err
		case 12:
			v, n, err := consumeVarint(b)
			f.FileID = v
			return n, err
		case 13:
			v, n, err := consumeVarint(b)
			f.ChildrenNum = int32(v)
			return n, err
		case 14:
			v, n, err := consumeVarint(b)
			f.StoragePolicy = uint32(v)
			return n, err
		case 15:
			v, n, err := consumeVarint(b)
			f.Flags = uint32(v)
			return n, err
		case 16:
			v, n, err := consumeString(b)
			f.Namespace = v
			return n, err
		case 17:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			var lb LocatedBlocks
			if err := lb.Unmarshal(v); err != nil {
				return 0, err
			}
			f.Locations = &lb
			return n, nil
		default:
			return -1, nil
		}
	})
}

// LocatedBlocks is the ordered list of a file's blocks plus whether the
// file is still under construction.
type LocatedBlocks struct {
	FileLength       uint64
	Blocks           []LocatedBlock
	UnderConstruction bool
	LastBlock        *LocatedBlock
	LastBlockComplete bool
}

func (lb LocatedBlocks) Marshal() []byte {
	var b []byte
	b = appendVarint(b, 1, lb.FileLength)
	for _, block := range lb.Blocks {
		b = appendMessage(b, 2, block.Marshal())
	}
	b = appendBool(b, 3, lb.UnderConstruction)
	if lb.LastBlock != nil {
		b = appendMessage(b, 4, lb.LastBlock.Marshal())
	}
	b = appendBool(b, 5, lb.LastBlockComplete)
	return b
}

func (lb *LocatedBlocks) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			lb.FileLength = v
			return n, err
		case 2:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			var block LocatedBlock
			if err := block.Unmarshal(v); err != nil {
				return 0, err
			}
			lb.Blocks = append(lb.Blocks, block)
			return n, nil
		case 3:
			v, n, err := consumeVarint(b)
			lb.UnderConstruction = v != 0
			return n, err
		case 4:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			var block LocatedBlock
			if err := block.Unmarshal(v); err != nil {
				return 0, err
			}
			lb.LastBlock = &block
			return n, nil
		case 5:
			v, n, err := consumeVarint(b)
			lb.LastBlockComplete = v != 0
			return n, err
		default:
			return -1, nil
		}
	})
}
