package meshing

import (
	"fmt"
	"sync"

	"github.com/gammazero/deque"
	"github.com/go-gl/mathgl/mgl32"

	"mini-mc-polygen/internal/world"
)

// Face is one exposed block face found during a meshing pass.
type Face struct {
	X, Y, Z     int8 // cluster-local
	Dir         world.Direction
	Block       world.BlockType
	AO          int8 // reserved, always 0
	Transparent bool
}

// MaxFaces bounds the faces a cluster of edge n can produce: a 3D
// checkerboard exposes all six faces of half the cells, plus one face per
// boundary cell toward a non-opaque neighbor cluster.
func MaxFaces(n int) int {
	return n*n*n/2*6 + 6*n*n
}

type cell struct {
	x, y, z int8
}

// scratch is the per-pass working memory. A pass owns its scratch
// exclusively; concurrent passes take different ones from scratchPool.
type scratch struct {
	size             int
	visited          []bool
	faces            []Face
	transparentFaces int
	queue            deque.Deque[cell]
}

var scratchPool sync.Pool

func getScratch(size int) *scratch {
	if s, ok := scratchPool.Get().(*scratch); ok && s.size == size {
		return s
	}
	return &scratch{
		size:    size,
		visited: make([]bool, size*size*size),
		faces:   make([]Face, 0, MaxFaces(size)),
	}
}

func putScratch(s *scratch) {
	scratchPool.Put(s)
}

func (s *scratch) reset() {
	clear(s.visited)
	s.faces = s.faces[:0]
	s.transparentFaces = 0
	s.queue.Clear()
}

// clusterPass meshes a single cluster.
type clusterPass struct {
	*scratch
	world   BlockSource
	blocks  BlockInfo
	chunk   *world.Chunk
	cluster *world.Cluster
}

func (p *clusterPass) index(x, y, z int) int {
	return x*p.size*p.size + y*p.size + z
}

// addFace buffers a face. Faces outside the cluster are dropped.
func (p *clusterPass) addFace(x, y, z int, dir world.Direction, block world.BlockType, transparent bool) {
	if !p.cluster.InBounds(x, y, z) {
		return
	}
	if len(p.faces) == cap(p.faces) {
		panic(fmt.Sprintf("meshing: face buffer overflow (%d faces) in cluster %d of chunk (%d,%d)",
			cap(p.faces), p.cluster.Y, p.chunk.X, p.chunk.Z))
	}
	p.faces = append(p.faces, Face{
		X: int8(x), Y: int8(y), Z: int8(z),
		Dir:         dir,
		Block:       block,
		Transparent: transparent,
	})
	if transparent {
		p.transparentFaces++
	}
}

// blockAt reads a block by cluster-local coordinates, going through the world
// when they leave the cluster.
func (p *clusterPass) blockAt(x, y, z int) world.BlockType {
	if p.cluster.InBounds(x, y, z) {
		return p.cluster.Block(x, y, z)
	}
	n := p.size
	return p.world.GetBlock(p.chunk.X*n+x, p.cluster.Y*n+y, p.chunk.Z*n+z)
}

// boundaryDir is the outer face of the cluster a coordinate on axis touches,
// or DirectionInvalid for interior coordinates.
func (p *clusterPass) boundaryDir(axis, c int) world.Direction {
	switch c {
	case 0:
		return world.Direction(axis * 2)
	case p.size - 1:
		return world.Direction(axis*2 + 1)
	}
	return world.DirectionInvalid
}

// extractFaces runs the three boundary sweeps and the optional viewer-seeded
// flood fill, filling the face buffer. It returns the OR of all visibility masks.
func (p *clusterPass) extractFaces(viewer *[3]int) world.SeeThrough {
	n := p.size
	var vis world.SeeThrough

	for axis := range 3 {
		// u and v are the two in-plane axes
		u, v := (axis+1)%3, (axis+2)%3
		for side, plane := range [2]int{0, n - 1} {
			planeDir := world.Direction(axis*2 + side)
			dx, dy, dz := planeDir.Offset()

			for a := range n {
				for b := range n {
					var c [3]int
					c[axis], c[u], c[v] = plane, a, b
					x, y, z := c[0], c[1], c[2]
					block := p.cluster.Block(x, y, z)

					if !p.blocks.IsOpaque(block) {
						entries := [3]world.Direction{
							p.boundaryDir(0, x),
							p.boundaryDir(1, y),
							p.boundaryDir(2, z),
						}
						// plane may be both 0 and n-1 when n == 1
						entries[axis] = planeDir
						vis |= p.floodFill(x, y, z, entries)
					}

					if block == world.BlockTypeAir {
						continue
					}
					if outside := p.blockAt(x+dx, y+dy, z+dz); !p.blocks.IsOpaque(outside) {
						p.addFace(x, y, z, planeDir, block, !p.blocks.IsOpaque(block))
					}
				}
			}
		}
	}

	if viewer != nil {
		x, y, z := viewer[0], viewer[1], viewer[2]
		if p.cluster.InBounds(x, y, z) && !p.blocks.IsOpaque(p.cluster.Block(x, y, z)) {
			vis |= p.floodFill(x, y, z, [3]world.Direction{world.DirectionInvalid, world.DirectionInvalid, world.DirectionInvalid})
		}
	}
	return vis
}

// viewerCell maps a world-space position to cluster-local coordinates, or
// nil when it lies outside the cluster.
func viewerCell(pos mgl32.Vec3, ch *world.Chunk, cl *world.Cluster) *[3]int {
	n := cl.Size()
	px, py, pz := world.FloorToBlock(pos.X()), world.FloorToBlock(pos.Y()), world.FloorToBlock(pos.Z())
	if world.FloorDiv(px, n) != ch.X || world.FloorDiv(pz, n) != ch.Z || world.FloorDiv(py, n) != cl.Y {
		return nil
	}
	return &[3]int{world.Mod(px, n), world.Mod(py, n), world.Mod(pz, n)}
}
