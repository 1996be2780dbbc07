package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"mini-mc-polygen/internal/meshing"
	"mini-mc-polygen/internal/world"
)

// Dump layout, little endian, inside a zstd stream:
//
//	magic "MDMP", version u32, vertex size u32
//	per cluster: chunkX i32, chunkZ i32, clusterY i32, seeThrough u16,
//	             opaque count u32, transparent count u32, vertex bytes
const (
	dumpMagic   = "MDMP"
	dumpVersion = 1
)

var errBadDump = errors.New("not a mesh dump")

type clusterHeader struct {
	ChunkX, ChunkZ, ClusterY int32
	SeeThrough               uint16
	Opaque, Transparent      uint32
}

// dumpedCluster is one record read back from a dump.
type dumpedCluster struct {
	clusterHeader
	OpaqueVertices      []meshing.Vertex
	TransparentVertices []meshing.Vertex
}

// writeDump writes every non-empty published cluster mesh of w to path.
func writeDump(path string, w *world.World) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := encodeDump(f, w)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func encodeDump(dst io.Writer, w *world.World) (int, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)

	n, err := writeClusters(bw, w)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func writeClusters(bw *bufio.Writer, w *world.World) (int, error) {
	if _, err := bw.WriteString(dumpMagic); err != nil {
		return 0, err
	}
	if err := binary.Write(bw, binary.LittleEndian, [2]uint32{dumpVersion, uint32(meshing.VertexSize)}); err != nil {
		return 0, err
	}

	n := 0
	for _, ch := range w.Chunks() {
		for _, cl := range ch.Clusters {
			if cl.Vertices == 0 && cl.TransparentVertices == 0 {
				continue
			}
			hdr := clusterHeader{
				ChunkX:      int32(ch.X),
				ChunkZ:      int32(ch.Z),
				ClusterY:    int32(cl.Y),
				SeeThrough:  uint16(cl.SeeThrough),
				Opaque:      uint32(cl.Vertices),
				Transparent: uint32(cl.TransparentVertices),
			}
			if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
				return n, err
			}
			if err := binary.Write(bw, binary.LittleEndian, meshing.Vertices(cl.VBO)[:cl.Vertices]); err != nil {
				return n, err
			}
			if err := binary.Write(bw, binary.LittleEndian, meshing.Vertices(cl.TransparentVBO)[:cl.TransparentVertices]); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// readDump decodes a dump written by encodeDump.
func readDump(src io.Reader) ([]dumpedCluster, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	r := bufio.NewReader(dec)

	magic := make([]byte, len(dumpMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != dumpMagic {
		return nil, errBadDump
	}
	var head [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if head[0] != dumpVersion || head[1] != uint32(meshing.VertexSize) {
		return nil, fmt.Errorf("%w: version %d vertex size %d", errBadDump, head[0], head[1])
	}

	var out []dumpedCluster
	for {
		var c dumpedCluster
		if err := binary.Read(r, binary.LittleEndian, &c.clusterHeader); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("read cluster: %w", err)
		}
		c.OpaqueVertices = make([]meshing.Vertex, c.Opaque)
		c.TransparentVertices = make([]meshing.Vertex, c.Transparent)
		if err := binary.Read(r, binary.LittleEndian, c.OpaqueVertices); err != nil {
			return out, fmt.Errorf("read vertices: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, c.TransparentVertices); err != nil {
			return out, fmt.Errorf("read vertices: %w", err)
		}
		out = append(out, c)
	}
}
