package dfsclient

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/marmos91/dfsclient/internal/dfs/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCoordinator is a test double for coordinatorClient. Each method
// defers to an optional func field; nil fields return zero values.
type fakeCoordinator struct {
	statFn     func(ctx context.Context, path string) (*proto.FileStatus, error)
	listFn     func(ctx context.Context, path string) (proto.GetListingResponse, error)
	createFn   func(ctx context.Context, path, clientName string, createParent bool, replication uint32, blockSize uint64) (*proto.FileStatus, error)
	addBlockFn func(ctx context.Context, path, clientName string, fileID uint64, previous *proto.ExtendedBlock) (proto.LocatedBlock, error)
	completeFn func(ctx context.Context, path, clientName string, fileID uint64, last *proto.ExtendedBlock) (bool, error)
	deleteFn   func(ctx context.Context, path string, recursive bool) (bool, error)
	mkdirsFn   func(ctx context.Context, path string, createParent bool) (*proto.FileStatus, error)

	addBlockCalls int
	completeCalls int
}

func (f *fakeCoordinator) GetVersion(ctx context.Context) (proto.VersionResponse, error) {
	return proto.VersionResponse{}, nil
}

func (f *fakeCoordinator) List(ctx context.Context, path string) (proto.GetListingResponse, error) {
	if f.listFn != nil {
		return f.listFn(ctx, path)
	}
	return proto.GetListingResponse{}, nil
}

func (f *fakeCoordinator) Stat(ctx context.Context, path string) (*proto.FileStatus, error) {
	if f.statFn != nil {
		return f.statFn(ctx, path)
	}
	return nil, nil
}

func (f *fakeCoordinator) Mkdirs(ctx context.Context, path string, createParent bool) (*proto.FileStatus, error) {
	if f.mkdirsFn != nil {
		return f.mkdirsFn(ctx, path, createParent)
	}
	return nil, nil
}

func (f *fakeCoordinator) Create(ctx context.Context, path, clientName string, createParent bool, replication uint32, blockSize uint64) (*proto.FileStatus, error) {
	if f.createFn != nil {
		return f.createFn(ctx, path, clientName, createParent, replication, blockSize)
	}
	return &proto.FileStatus{FileID: 1}, nil
}

func (f *fakeCoordinator) AddBlock(ctx context.Context, path, clientName string, fileID uint64, previous *proto.ExtendedBlock) (proto.LocatedBlock, error) {
	f.addBlockCalls++
	if f.addBlockFn != nil {
		return f.addBlockFn(ctx, path, clientName, fileID, previous)
	}
	return proto.LocatedBlock{Block: proto.ExtendedBlock{BlockID: uint64(f.addBlockCalls)}}, nil
}

func (f *fakeCoordinator) Complete(ctx context.Context, path, clientName string, fileID uint64, last *proto.ExtendedBlock) (bool, error) {
	f.completeCalls++
	if f.completeFn != nil {
		return f.completeFn(ctx, path, clientName, fileID, last)
	}
	return true, nil
}

func (f *fakeCoordinator) Delete(ctx context.Context, path string, recursive bool) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, path, recursive)
	}
	return true, nil
}

// fakeDatanode is a test double for datanodeClient. WriteBlock records
// every call's byte count and read data so tests can assert on the exact
// packet-shaping behavior CopyFromSource drives.
type fakeDatanode struct {
	writeCalls []writeCall
	blocks     map[uint64][]byte // block ID -> written payload, for readback
}

type writeCall struct {
	blockID uint64
	data    []byte
}

func newFakeDatanode() *fakeDatanode {
	return &fakeDatanode{blocks: make(map[uint64][]byte)}
}

func (f *fakeDatanode) WriteBlock(ctx context.Context, targets []proto.DatanodeInfo, block proto.ExtendedBlock, source io.Reader) (int64, error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return 0, err
	}
	f.writeCalls = append(f.writeCalls, writeCall{blockID: block.BlockID, data: data})
	f.blocks[block.BlockID] = data
	return int64(len(data)), nil
}

func (f *fakeDatanode) ReadBlock(ctx context.Context, host string, block proto.ExtendedBlock, sink io.Writer) (int64, error) {
	data := f.blocks[block.BlockID]
	n, err := sink.Write(data)
	return int64(n), err
}

func newTestClient(coord *fakeCoordinator, dn *fakeDatanode, blockSize uint64) *Client {
	return &Client{
		coord:       coord,
		dnClient:    dn,
		clientName:  "test-client",
		replication: 1,
		blockSize:   blockSize,
	}
}

func TestCopyFromSource_EmptySource(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{}
	dn := newFakeDatanode()
	c := newTestClient(coord, dn, 128)

	err := c.CopyFromSource(context.Background(), "/empty", bytes.NewReader(nil))
	require.NoError(t, err)

	require.Len(t, dn.writeCalls, 1, "an empty file must still stream exactly one block to emit its mandatory empty/last packet")
	assert.Empty(t, dn.writeCalls[0].data)
	assert.Equal(t, 1, coord.addBlockCalls)
	assert.Equal(t, 1, coord.completeCalls)
}

func TestCopyFromSource_SingleBlock(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{}
	dn := newFakeDatanode()
	c := newTestClient(coord, dn, 128)

	payload := []byte("hello, distributed file system")
	err := c.CopyFromSource(context.Background(), "/single", bytes.NewReader(payload))
	require.NoError(t, err)

	require.Len(t, dn.writeCalls, 1)
	assert.Equal(t, payload, dn.writeCalls[0].data)
	assert.Equal(t, 1, coord.addBlockCalls)
	assert.Equal(t, 1, coord.completeCalls)
}

func TestCopyFromSource_MultiBlock(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{}
	dn := newFakeDatanode()
	const blockSize = 4
	c := newTestClient(coord, dn, blockSize)

	payload := []byte("0123456789") // 10 bytes -> blocks of 4, 4, 2
	err := c.CopyFromSource(context.Background(), "/multi", bytes.NewReader(payload))
	require.NoError(t, err)

	require.Len(t, dn.writeCalls, 3)
	assert.Equal(t, []byte("0123"), dn.writeCalls[0].data)
	assert.Equal(t, []byte("4567"), dn.writeCalls[1].data)
	assert.Equal(t, []byte("89"), dn.writeCalls[2].data)
	assert.Equal(t, 3, coord.addBlockCalls)
	assert.Equal(t, 1, coord.completeCalls)

	var total int
	for _, wc := range dn.writeCalls {
		total += len(wc.data)
	}
	assert.Equal(t, len(payload), total)
}

func TestCopyFromSource_RejectsExistingPath(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{
		statFn: func(ctx context.Context, path string) (*proto.FileStatus, error) {
			return &proto.FileStatus{FileID: 7}, nil
		},
	}
	dn := newFakeDatanode()
	c := newTestClient(coord, dn, 128)

	err := c.CopyFromSource(context.Background(), "/already-there", bytes.NewReader([]byte("x")))
	require.Error(t, err)
	assert.Empty(t, dn.writeCalls)
}

func TestCopyToSink_RoundTrip(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{}
	dn := newFakeDatanode()
	const blockSize = 4
	writeClient := newTestClient(coord, dn, blockSize)

	payload := []byte("round trip bytes")
	require.NoError(t, writeClient.CopyFromSource(context.Background(), "/rt", bytes.NewReader(payload)))

	blocks := make([]proto.LocatedBlock, 0, len(dn.writeCalls))
	var offset uint64
	for _, wc := range dn.writeCalls {
		blocks = append(blocks, proto.LocatedBlock{
			Block:    proto.ExtendedBlock{BlockID: wc.blockID, NumBytes: uint64(len(wc.data))},
			Offset:   offset,
			Replicas: []proto.DatanodeInfo{{Name: "dn1:9866"}},
		})
		offset += uint64(len(wc.data))
	}

	readCoord := &fakeCoordinator{
		statFn: func(ctx context.Context, path string) (*proto.FileStatus, error) {
			return &proto.FileStatus{
				FileType: proto.WireKindFile,
				Length:   uint64(len(payload)),
				Locations: &proto.LocatedBlocks{
					FileLength: uint64(len(payload)),
					Blocks:     blocks,
				},
			}, nil
		},
	}
	readClient := newTestClient(readCoord, dn, blockSize)

	var buf bytes.Buffer
	require.NoError(t, readClient.CopyToSink(context.Background(), "/rt", &buf))
	assert.Equal(t, payload, buf.Bytes())
}

func TestCopyToSink_EmptyFile(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{
		statFn: func(ctx context.Context, path string) (*proto.FileStatus, error) {
			return &proto.FileStatus{FileType: proto.WireKindFile, Length: 0}, nil
		},
	}
	dn := newFakeDatanode()
	c := newTestClient(coord, dn, 128)

	var buf bytes.Buffer
	require.NoError(t, c.CopyToSink(context.Background(), "/empty", &buf))
	assert.Empty(t, buf.Bytes())
}

func TestCopyToSink_NotFound(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{}
	dn := newFakeDatanode()
	c := newTestClient(coord, dn, 128)

	err := c.CopyToSink(context.Background(), "/missing", &bytes.Buffer{})
	require.Error(t, err)
}

func TestList(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{
		listFn: func(ctx context.Context, path string) (proto.GetListingResponse, error) {
			return proto.GetListingResponse{
				Entries: []proto.FileStatus{
					{FileType: proto.WireKindFile, Path: []byte("/dir/a")},
					{FileType: proto.WireKindDirectory, Path: []byte("/dir/b")},
				},
			}, nil
		},
	}
	dn := newFakeDatanode()
	c := newTestClient(coord, dn, 128)

	entries, err := c.List(context.Background(), "/dir")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].BaseName)
	assert.True(t, entries[1].IsDirectory())
}

func TestReadAttributes(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{
		statFn: func(ctx context.Context, path string) (*proto.FileStatus, error) {
			return &proto.FileStatus{FileType: proto.WireKindFile, Path: []byte(path), Length: 42}, nil
		},
	}
	dn := newFakeDatanode()
	c := newTestClient(coord, dn, 128)

	summary, err := c.ReadAttributes(context.Background(), "/a/b")
	require.NoError(t, err)
	assert.Equal(t, int64(42), summary.Length)
	assert.True(t, summary.IsFile())
}

func TestReadAttributes_NotFound(t *testing.T) {
	t.Parallel()

	coord := &fakeCoordinator{}
	dn := newFakeDatanode()
	c := newTestClient(coord, dn, 128)

	_, err := c.ReadAttributes(context.Background(), "/missing")
	require.Error(t, err)
}
