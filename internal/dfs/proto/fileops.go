package proto

import "google.golang.org/protobuf/encoding/protowire"

// Constants pinned by the reference server generation this client targets.
const (
	DefaultListingPageSize = 1000
	CreateFlagCreate       = 0x01
	CreateFlagOverwrite    = 0x02
)

// VersionRequest carries no fields; it exists so the RPC framer has a
// typed request body for the coordinator-internal protocol's sole method.
type VersionRequest struct{}

func (VersionRequest) Marshal() []byte { return nil }

// VersionResponse reports the coordinator's build identity.
type VersionResponse struct {
	BuildVersion    string
	BlockPoolID     string
	SoftwareVersion string
	Capabilities    uint64
}

func (v VersionResponse) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, v.BuildVersion)
	b = appendString(b, 2, v.BlockPoolID)
	b = appendString(b, 3, v.SoftwareVersion)
	b = appendVarintAlways(b, 4, v.Capabilities)
	return b
}

func (v *VersionResponse) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			s, n, err := consumeString(b)
			v.BuildVersion = s
			return n, err
		case 2:
			s, n, err := consumeString(b)
			v.BlockPoolID = s
			return n, err
		case 3:
			s, n, err := consumeString(b)
			v.SoftwareVersion = s
			return n, err
		case 4:
			c, n, err := consumeVarint(b)
			v.Capabilities = c
			return n, err
		default:
			return -1, nil
		}
	})
}

// GetListingRequest lists the immediate children of src.
type GetListingRequest struct {
	Src         string
	StartAfter  []byte
	NeedLocation bool
}

func (r GetListingRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.Src)
	b = appendBytes(b, 2, r.StartAfter)
	b = appendBool(b, 3, r.NeedLocation)
	return b
}

// GetListingResponse carries at most DefaultListingPageSize entries and
// whether the server has more to offer beyond that page.
type GetListingResponse struct {
	Entries    []FileStatus
	RemainingEntries uint32
}

func (r *GetListingResponse) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			var fs FileStatus
			if err := fs.Unmarshal(v); err != nil {
				return 0, err
			}
			r.Entries = append(r.Entries, fs)
			return n, nil
		case 2:
			v, n, err := consumeVarint(b)
			r.RemainingEntries = uint32(v)
			return n, err
		default:
			return -1, nil
		}
	})
}

// GetFileInfoRequest is `stat`.
type GetFileInfoRequest struct {
	Src string
}

func (r GetFileInfoRequest) Marshal() []byte {
	return appendString(nil, 1, r.Src)
}

// GetFileInfoResponse carries no status field when the path does not
// exist: an absent FileStatus is the semantic not-found signal.
type GetFileInfoResponse struct {
	FileStatus *FileStatus
}

func (r *GetFileInfoResponse) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			var fs FileStatus
			if err := fs.Unmarshal(v); err != nil {
				return 0, err
			}
			r.FileStatus = &fs
			return n, nil
		default:
			return -1, nil
		}
	})
}

// MkdirsRequest creates src as a directory.
type MkdirsRequest struct {
	Src          string
	Masked       uint32
	CreateParent bool
}

func (r MkdirsRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.Src)
	b = appendVarintAlways(b, 2, uint64(r.Masked))
	b = appendBool(b, 3, r.CreateParent)
	return b
}

// MkdirsResponse reports whether the directory (or its full chain, when
// CreateParent was set) was created.
type MkdirsResponse struct {
	Result bool
}

func (r *MkdirsResponse) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			r.Result = v != 0
			return n, err
		default:
			return -1, nil
		}
	})
}

// CreateRequest allocates a new file entry with no blocks.
type CreateRequest struct {
	Src          string
	Masked       uint32
	ClientName   string
	CreateFlag   uint32
	CreateParent bool
	Replication  uint32
	BlockSize    uint64
}

func (r CreateRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.Src)
	b = appendVarintAlways(b, 2, uint64(r.Masked))
	b = appendString(b, 3, r.ClientName)
	b = appendVarintAlways(b, 4, uint64(r.CreateFlag))
	b = appendBool(b, 5, r.CreateParent)
	b = appendVarintAlways(b, 6, uint64(r.Replication))
	b = appendVarintAlways(b, 7, r.BlockSize)
	return b
}

// CreateResponse carries the new file's metadata; it has no blocks yet.
type CreateResponse struct {
	FileStatus *FileStatus
}

func (r *CreateResponse) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			var fs FileStatus
			if err := fs.Unmarshal(v); err != nil {
				return 0, err
			}
			r.FileStatus = &fs
			return n, nil
		default:
			return -1, nil
		}
	})
}

// AddBlockRequest requests a new block; when Previous is non-nil it
// carries the prior block's final (pool, id, gen, length), implicitly
// closing it.
type AddBlockRequest struct {
	Src        string
	ClientName string
	FileID     uint64
	Previous   *ExtendedBlock
}

func (r AddBlockRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.Src)
	b = appendString(b, 2, r.ClientName)
	b = appendVarintAlways(b, 3, r.FileID)
	if r.Previous != nil {
		b = appendMessage(b, 4, r.Previous.Marshal())
	}
	return b
}

// AddBlockResponse carries the newly allocated block.
type AddBlockResponse struct {
	Block LocatedBlock
}

func (r *AddBlockResponse) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			return n, r.Block.Unmarshal(v)
		default:
			return -1, nil
		}
	})
}

// CompleteRequest closes out a write session; Last carries the
// caller-authoritative final length of the tail block.
type CompleteRequest struct {
	Src        string
	ClientName string
	FileID     uint64
	Last       *ExtendedBlock
}

func (r CompleteRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.Src)
	b = appendString(b, 2, r.ClientName)
	b = appendVarintAlways(b, 3, r.FileID)
	if r.Last != nil {
		b = appendMessage(b, 4, r.Last.Marshal())
	}
	return b
}

// CompleteResponse reports whether the coordinator accepted the close.
type CompleteResponse struct {
	Result bool
}

func (r *CompleteResponse) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			r.Result = v != 0
			return n, err
		default:
			return -1, nil
		}
	})
}

// DeleteRequest removes src; Recursive must be set to remove a non-empty
// directory.
type DeleteRequest struct {
	Src       string
	Recursive bool
}

func (r DeleteRequest) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, r.Src)
	b = appendBool(b, 2, r.Recursive)
	return b
}

// DeleteResponse reports whether the path was removed.
type DeleteResponse struct {
	Result bool
}

func (r *DeleteResponse) Unmarshal(b []byte) error {
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(b)
			r.Result = v != 0
			return n, err
		default:
			return -1, nil
		}
	})
}
