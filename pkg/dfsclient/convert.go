package dfsclient

import (
	"time"

	"github.com/marmos91/dfsclient/internal/dfs/proto"
)

func kindFromWire(w int32) Kind {
	switch w {
	case proto.WireKindDirectory:
		return KindDirectory
	case proto.WireKindSymlink:
		return KindSymlink
	default:
		return KindFile
	}
}

func replicaFromWire(d proto.DatanodeInfo) ReplicaEndpoint {
	return ReplicaEndpoint{Name: d.Name, UUID: d.UUID, TopologyPath: d.TopologyPath}
}

func blockFromWire(lb proto.LocatedBlock) BlockLocation {
	replicas := make([]ReplicaEndpoint, 0, len(lb.Replicas))
	for _, r := range lb.Replicas {
		replicas = append(replicas, replicaFromWire(r))
	}
	return BlockLocation{
		Offset:          int64(lb.Offset),
		Length:          int64(lb.Block.NumBytes),
		BlockPoolID:     lb.Block.PoolID,
		BlockID:         lb.Block.BlockID,
		GenerationStamp: lb.Block.GenerationStamp,
		Replicas:        replicas,
	}
}

func summaryFromWire(fs proto.FileStatus) FileSummary {
	var blocks []BlockLocation
	if fs.Locations != nil {
		blocks = make([]BlockLocation, 0, len(fs.Locations.Blocks))
		for _, lb := range fs.Locations.Blocks {
			blocks = append(blocks, blockFromWire(lb))
		}
	}

	path := string(fs.Path)
	return FileSummary{
		Kind:          kindFromWire(fs.FileType),
		BaseName:      BasenamePath(path),
		Path:          path,
		Length:        int64(fs.Length),
		Permission:    uint16(fs.Permission & 0x1FF),
		Owner:         fs.Owner,
		Group:         fs.Group,
		ModTime:       time.UnixMilli(int64(fs.ModTime)),
		AccessTime:    time.UnixMilli(int64(fs.AccessTime)),
		SymlinkTarget: string(fs.SymlinkTarget),
		Replication:   int32(fs.BlockReplication),
		BlockSize:     int64(fs.BlockSize),
		FileID:        fs.FileID,
		ChildrenCount: fs.ChildrenNum,
		StoragePolicy: uint8(fs.StoragePolicy),
		Flags:         fs.Flags,
		Namespace:     fs.Namespace,
		Blocks:        blocks,
	}
}

func extendedBlockFromLocation(b BlockLocation) proto.ExtendedBlock {
	return proto.ExtendedBlock{
		PoolID:          b.BlockPoolID,
		BlockID:         b.BlockID,
		NumBytes:        uint64(b.Length),
		GenerationStamp: b.GenerationStamp,
	}
}

func datanodeInfosFromReplicas(replicas []ReplicaEndpoint, localMode bool) []proto.DatanodeInfo {
	out := make([]proto.DatanodeInfo, 0, len(replicas))
	for _, r := range replicas {
		name := r.Name
		if localMode {
			name = rewriteHostLocal(name)
		}
		out = append(out, proto.DatanodeInfo{Name: name, UUID: r.UUID, TopologyPath: r.TopologyPath})
	}
	return out
}

// rewriteHostLocal replaces the host component of a host:port endpoint
// with localhost, preserving the port.
func rewriteHostLocal(hostPort string) string {
	for i := len(hostPort) - 1; i >= 0; i-- {
		if hostPort[i] == ':' {
			return "localhost" + hostPort[i:]
		}
	}
	return "localhost"
}
