package datanode

import (
	"context"
	"hash/crc32"
	"io"
	"net"
	"time"

	"github.com/marmos91/dfsclient/internal/dfs/proto"
	"github.com/marmos91/dfsclient/pkg/bufpool"
	"github.com/marmos91/dfsclient/pkg/dfsclient/dfserr"
)

// Defaults per the reference server generation this client targets.
const (
	DefaultPort           = 9866
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 30 * time.Second
	MaxPacketPayload      = 64 * 1024
)

// Client speaks the data-transfer protocol to one storage node per
// operation; a fresh TCP connection is dialed for each block and closed
// when the operation completes.
type Client struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ClientName     string
}

// NewClient builds a Client, filling in default timeouts when unset.
func NewClient(clientName string, connectTimeout, readTimeout time.Duration) *Client {
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if readTimeout == 0 {
		readTimeout = DefaultReadTimeout
	}
	return &Client{ConnectTimeout: connectTimeout, ReadTimeout: readTimeout, ClientName: clientName}
}

// HostInReplicas reports whether host appears among the block's replica
// endpoints. ReadBlock and WriteBlock do not call it; they dial whatever
// host or targets they are given.
func HostInReplicas(host string, replicas []proto.DatanodeInfo) bool {
	for _, r := range replicas {
		if r.Name == host {
			return true
		}
	}
	return false
}

func (c *Client) dial(ctx context.Context, host string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, dfserr.InfrastructureError(err, "dial storage node "+host)
	}
	return conn, nil
}

// ReadBlock streams block's contents from host into sink. host is dialed
// as given; it is not checked against any replica list. Returns the total
// bytes forwarded to sink, which must equal the block's declared length.
func (c *Client) ReadBlock(ctx context.Context, host string, block proto.ExtendedBlock, sink io.Writer) (int64, error) {
	conn, err := c.dial(ctx, host)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if c.ReadTimeout > 0 {
		conn.SetDeadline(time.Now().Add(c.ReadTimeout))
	}

	req := proto.OpReadBlockProto{
		Header: proto.ClientOperationHeader{
			Base:       proto.BaseHeader{Block: block},
			ClientName: c.ClientName,
		},
		Offset:        0,
		Len:           block.NumBytes,
		SendChecksums: false,
	}
	if err := writeEnvelope(conn, proto.OpReadBlock, req.Marshal()); err != nil {
		return 0, err
	}
	if _, err := readBlockOpResponse(conn); err != nil {
		return 0, err
	}

	var total int64
	for {
		header, data, err := readPacket(conn)
		if err != nil {
			if ctx.Err() != nil {
				return total, dfserr.Wrap(dfserr.Infrastructure, ctx.Err(), "read block canceled")
			}
			return total, err
		}
		if len(data) > 0 {
			n, werr := sink.Write(data)
			total += int64(n)
			if werr != nil {
				return total, dfserr.CallerStreamError(werr, "write block data to sink")
			}
		}
		if header.LastPacketInBlock {
			break
		}
	}

	if total != int64(block.NumBytes) {
		return total, dfserr.Newf(dfserr.Infrastructure, "block %d: read %d bytes, expected %d", block.BlockID, total, block.NumBytes)
	}
	return total, nil
}

// WriteBlock opens a write pipeline to the first of targets (the head
// replica) and streams source through it in up-to-64KiB packets,
// contiguous sequence numbers starting at 0, waiting for each packet's
// acknowledgement before sending the next. A final zero-payload,
// last=true packet is always sent after source is exhausted. Returns the
// total payload bytes written.
func (c *Client) WriteBlock(ctx context.Context, targets []proto.DatanodeInfo, block proto.ExtendedBlock, source io.Reader) (int64, error) {
	if len(targets) == 0 {
		return 0, dfserr.Newf(dfserr.Infrastructure, "write block %d: no target replicas", block.BlockID)
	}
	head := targets[0]

	conn, err := c.dial(ctx, head.Name)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if c.ReadTimeout > 0 {
		conn.SetDeadline(time.Now().Add(c.ReadTimeout))
	}

	req := proto.OpWriteBlockProto{
		Header: proto.ClientOperationHeader{
			Base:       proto.BaseHeader{Block: block},
			ClientName: c.ClientName,
		},
		Targets:               targets,
		Stage:                 proto.StagePipelineSetupCreate,
		PipelineSize:          uint32(len(targets)),
		MinBytesRcvd:          0,
		MaxBytesRcvd:          0,
		LatestGenerationStamp: block.GenerationStamp,
		RequestedChecksum: proto.ChecksumProto{
			Type:             proto.ChecksumTypeCRC32,
			BytesPerChecksum: proto.DefaultBytesPerChecksum,
		},
	}
	if err := writeEnvelope(conn, proto.OpWriteBlock, req.Marshal()); err != nil {
		return 0, err
	}
	if _, err := readBlockOpResponse(conn); err != nil {
		return 0, err
	}

	var total int64
	var seqNo int64
	buf := bufpool.Get(MaxPacketPayload)
	defer bufpool.Put(buf)
	for {
		n, rerr := io.ReadFull(source, buf)
		if n > 0 {
			if err := c.sendPacket(conn, seqNo, total, buf[:n], false); err != nil {
				if ctx.Err() != nil {
					return total, dfserr.Wrap(dfserr.Infrastructure, ctx.Err(), "write block canceled")
				}
				return total, err
			}
			total += int64(n)
			seqNo++
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return total, dfserr.CallerStreamError(rerr, "read block data from source")
		}
	}

	if err := c.sendPacket(conn, seqNo, total, nil, true); err != nil {
		return total, err
	}
	return total, nil
}

func (c *Client) sendPacket(conn net.Conn, seqNo int64, offset int64, data []byte, last bool) error {
	header := proto.PacketHeader{
		OffsetInBlock:     uint64(offset),
		SeqNo:             seqNo,
		LastPacketInBlock: last,
		DataLen:           uint32(len(data)),
		SyncBlock:         false,
	}

	var checksums []uint32
	if len(data) > 0 {
		checksums = chunkedCRC32(data, proto.DefaultBytesPerChecksum)
	}

	if err := writePacket(conn, header, checksums, data); err != nil {
		return err
	}
	return readAck(conn, seqNo)
}

// chunkedCRC32 computes one big-endian CRC32 per bytesPerChunk-sized
// chunk of data (the final chunk may be short).
func chunkedCRC32(data []byte, bytesPerChunk int) []uint32 {
	n := ceilDiv(len(data), bytesPerChunk)
	sums := make([]uint32, 0, n)
	for off := 0; off < len(data); off += bytesPerChunk {
		end := off + bytesPerChunk
		if end > len(data) {
			end = len(data)
		}
		sums = append(sums, crc32.ChecksumIEEE(data[off:end]))
	}
	return sums
}
