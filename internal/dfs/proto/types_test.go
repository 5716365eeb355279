package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtendedBlock_RoundTrip(t *testing.T) {
	t.Parallel()
	in := ExtendedBlock{PoolID: "BP-1234", BlockID: 99, NumBytes: 1048576, GenerationStamp: 7}

	var out ExtendedBlock
	require.NoError(t, out.Unmarshal(in.Marshal()))
	assert.Equal(t, in, out)
}

func TestLocatedBlock_RoundTrip(t *testing.T) {
	t.Parallel()
	in := LocatedBlock{
		Block:  ExtendedBlock{PoolID: "BP-1", BlockID: 1, NumBytes: 512, GenerationStamp: 1},
		Offset: 1048576,
		Replicas: []DatanodeInfo{
			{Name: "dn1:9866", UUID: "uuid-1", TopologyPath: "/rack1"},
			{Name: "dn2:9866", UUID: "uuid-2", TopologyPath: "/rack2"},
		},
	}

	var out LocatedBlock
	require.NoError(t, out.Unmarshal(in.Marshal()))
	assert.Equal(t, in, out)
}

func TestFileStatus_RoundTripWithLocations(t *testing.T) {
	t.Parallel()
	in := FileStatus{
		FileType:   WireKindFile,
		Path:       []byte("hello.txt"),
		Length:     2621440,
		Permission: 0644,
		Owner:      "alice",
		Group:      "users",
		ModTime:    1700000000000,
		AccessTime: 1700000000000,
		BlockReplication: 3,
		BlockSize:        1048576,
		FileID:           42,
		Locations: &LocatedBlocks{
			FileLength: 2621440,
			Blocks: []LocatedBlock{
				{Block: ExtendedBlock{PoolID: "BP-1", BlockID: 1, NumBytes: 1048576}, Offset: 0},
				{Block: ExtendedBlock{PoolID: "BP-1", BlockID: 2, NumBytes: 1048576}, Offset: 1048576},
				{Block: ExtendedBlock{PoolID: "BP-1", BlockID: 3, NumBytes: 524288}, Offset: 2097152},
			},
			LastBlockComplete: true,
		},
	}

	var out FileStatus
	require.NoError(t, out.Unmarshal(in.Marshal()))
	assert.Equal(t, in, out)
}

func TestFileStatus_DirectoryHasNoLocations(t *testing.T) {
	t.Parallel()
	in := FileStatus{FileType: WireKindDirectory, Path: []byte("a"), ChildrenNum: 3}

	var out FileStatus
	require.NoError(t, out.Unmarshal(in.Marshal()))
	assert.Nil(t, out.Locations)
	assert.Equal(t, int32(3), out.ChildrenNum)
}
