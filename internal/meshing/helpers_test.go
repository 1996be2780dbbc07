package meshing

import (
	"mini-mc-polygen/internal/registry"
	"mini-mc-polygen/internal/vbo"
	"mini-mc-polygen/internal/world"
)

// stubWorld serves loaded chunks and returns outside for everything else,
// including above and below the column.
type stubWorld struct {
	chunks  map[world.ChunkCoord]*world.Chunk
	outside world.BlockType
}

func newStubWorld(outside world.BlockType, chunks ...*world.Chunk) *stubWorld {
	s := &stubWorld{chunks: make(map[world.ChunkCoord]*world.Chunk), outside: outside}
	for _, ch := range chunks {
		s.chunks[ch.Coord()] = ch
	}
	return s
}

func (s *stubWorld) GetChunk(cx, cz int) *world.Chunk {
	return s.chunks[world.ChunkCoord{X: cx, Z: cz}]
}

func (s *stubWorld) GetBlock(x, y, z int) world.BlockType {
	for _, ch := range s.chunks {
		n := ch.ClusterSize()
		if world.FloorDiv(x, n) == ch.X && world.FloorDiv(z, n) == ch.Z && y >= 0 && y < ch.Height() {
			return ch.GetBlock(world.Mod(x, n), y, world.Mod(z, n))
		}
	}
	return s.outside
}

// runPass meshes cluster ci of ch and returns the pass (with its faces) and
// the visibility mask. The scratch is not returned to the pool.
func runPass(src BlockSource, ch *world.Chunk, ci int, viewer *[3]int) (*clusterPass, world.SeeThrough) {
	sc := getScratch(ch.ClusterSize())
	sc.reset()
	p := &clusterPass{scratch: sc, world: src, blocks: registry.Default(), chunk: ch, cluster: ch.Clusters[ci]}
	return p, p.extractFaces(viewer)
}

func fillCluster(cl *world.Cluster, b world.BlockType) {
	n := cl.Size()
	for x := range n {
		for y := range n {
			for z := range n {
				cl.SetBlock(x, y, z, b)
			}
		}
	}
}

func newTestGenerator(src BlockSource, arena *vbo.Arena, debounce int) *Generator {
	return NewGenerator(src, registry.Default(), arena, nil, Options{
		DebounceFrames: debounce,
		Logger:         DiscardLogger(),
	})
}
