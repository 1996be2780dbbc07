package world

import (
	"sort"
	"sync"

	"mini-mc-polygen/internal/profiling"
)

const (
	// DefaultClusterSize is the edge length of a cluster in blocks.
	DefaultClusterSize = 16
	// DefaultClustersPerChunk is how many clusters are stacked in one chunk.
	DefaultClustersPerChunk = 8
)

// World stores loaded chunks indexed by their (X, Z) coordinates.
type World struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove

	clusterSize      int
	clustersPerChunk int
}

// New creates an empty world with the default dimensions.
func New() *World {
	return NewSized(DefaultClusterSize, DefaultClustersPerChunk)
}

// NewSized creates an empty world with custom cluster dimensions.
func NewSized(clusterSize, clustersPerChunk int) *World {
	if clusterSize < 1 {
		clusterSize = 1
	}
	if clustersPerChunk < 1 {
		clustersPerChunk = 1
	}
	return &World{
		chunks:           make(map[ChunkCoord]*Chunk),
		clusterSize:      clusterSize,
		clustersPerChunk: clustersPerChunk,
	}
}

// ClusterSize returns the edge length of a cluster (and the chunk width).
func (w *World) ClusterSize() int {
	return w.clusterSize
}

// ClustersPerChunk returns the number of clusters stacked in a chunk.
func (w *World) ClustersPerChunk() int {
	return w.clustersPerChunk
}

// Height returns the world height in blocks.
func (w *World) Height() int {
	return w.clusterSize * w.clustersPerChunk
}

// NewChunk creates a chunk with this world's dimensions without adding it.
func (w *World) NewChunk(cx, cz int) *Chunk {
	return NewChunk(cx, cz, w.clusterSize, w.clustersPerChunk)
}

// GetChunk returns the chunk at the specified chunk coordinates, or nil if it is not loaded.
func (w *World) GetChunk(cx, cz int) *Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chunks[ChunkCoord{X: cx, Z: cz}]
}

// GetOrCreateChunk returns the chunk at (cx, cz), creating an empty one if needed.
func (w *World) GetOrCreateChunk(cx, cz int) *Chunk {
	if ch := w.GetChunk(cx, cz); ch != nil {
		return ch
	}
	ch := w.NewChunk(cx, cz)
	if w.AddChunk(ch) {
		return ch
	}
	// Another goroutine won the race
	return w.GetChunk(cx, cz)
}

// AddChunk installs a chunk if its slot is free. Horizontal neighbors are
// forced to remesh since faces toward the new chunk may have changed.
func (w *World) AddChunk(ch *Chunk) bool {
	coord := ch.Coord()
	w.mu.Lock()
	if _, ok := w.chunks[coord]; ok {
		w.mu.Unlock()
		return false
	}
	w.chunks[coord] = ch
	w.modCount++
	neighbors := w.neighborsLocked(coord)
	w.mu.Unlock()

	for _, nb := range neighbors {
		nb.ForceRemesh()
	}
	return true
}

// RemoveChunk unloads the chunk at (cx, cz). Returns the removed chunk, or nil.
func (w *World) RemoveChunk(cx, cz int) *Chunk {
	coord := ChunkCoord{X: cx, Z: cz}
	w.mu.Lock()
	ch, ok := w.chunks[coord]
	if ok {
		delete(w.chunks, coord)
		w.modCount++
	}
	w.mu.Unlock()
	return ch
}

func (w *World) neighborsLocked(coord ChunkCoord) []*Chunk {
	var out []*Chunk
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if nb, ok := w.chunks[ChunkCoord{X: coord.X + d[0], Z: coord.Z + d[1]}]; ok {
			out = append(out, nb)
		}
	}
	return out
}

// Chunks returns all loaded chunks ordered by (X, Z).
func (w *World) Chunks() []*Chunk {
	w.mu.RLock()
	out := make([]*Chunk, 0, len(w.chunks))
	for _, ch := range w.chunks {
		out = append(out, ch)
	}
	w.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// DirtyChunks returns loaded chunks with changes that have not been meshed.
func (w *World) DirtyChunks() []*Chunk {
	defer profiling.Track("world.DirtyChunks")()
	all := w.Chunks()
	dirty := all[:0]
	for _, ch := range all {
		if ch.NeedsRemesh() {
			dirty = append(dirty, ch)
		}
	}
	return dirty
}

// GetModCount returns the current modification count of the chunk map.
func (w *World) GetModCount() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.modCount
}

// GetBlock returns the block at world coordinates. Above or below the column
// is air; a column that is not loaded reads as OpaqueFallback.
func (w *World) GetBlock(x, y, z int) BlockType {
	if y < 0 || y >= w.Height() {
		return BlockTypeAir
	}
	ch := w.GetChunk(FloorDiv(x, w.clusterSize), FloorDiv(z, w.clusterSize))
	if ch == nil {
		return OpaqueFallback
	}
	return ch.GetBlock(Mod(x, w.clusterSize), y, Mod(z, w.clusterSize))
}

// IsAir checks if the block at the specified world coordinates is air.
func (w *World) IsAir(x, y, z int) bool {
	return w.GetBlock(x, y, z) == BlockTypeAir
}

// SetBlock sets a block at world coordinates, creating the chunk if needed.
// Clusters sharing the touched boundary are bumped so their faces get rebuilt.
func (w *World) SetBlock(x, y, z int, b BlockType) {
	if y < 0 || y >= w.Height() {
		return
	}
	n := w.clusterSize
	ch := w.GetOrCreateChunk(FloorDiv(x, n), FloorDiv(z, n))
	lx, lz := Mod(x, n), Mod(z, n)
	if !ch.SetBlock(lx, y, lz, b) {
		return
	}

	ly := y % n
	ci := y / n
	if lx == 0 {
		w.touchCluster(x-1, y, z)
	} else if lx == n-1 {
		w.touchCluster(x+1, y, z)
	}
	if ly == 0 && ci > 0 {
		ch.touchCluster(ci - 1)
	} else if ly == n-1 && ci < len(ch.Clusters)-1 {
		ch.touchCluster(ci + 1)
	}
	if lz == 0 {
		w.touchCluster(x, y, z-1)
	} else if lz == n-1 {
		w.touchCluster(x, y, z+1)
	}
}

func (w *World) touchCluster(x, y, z int) {
	if nb := w.GetChunk(FloorDiv(x, w.clusterSize), FloorDiv(z, w.clusterSize)); nb != nil {
		nb.touchCluster(y / w.clusterSize)
	}
}

// Populate generates every chunk within radius (in chunks) around (cx, cz)
// that is not loaded yet. Returns the number of chunks added.
func (w *World) Populate(gen TerrainGenerator, cx, cz, radius int) int {
	defer profiling.Track("world.Populate")()
	added := 0
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if w.GetChunk(cx+dx, cz+dz) != nil {
				continue
			}
			ch := w.NewChunk(cx+dx, cz+dz)
			gen.PopulateChunk(ch)
			if w.AddChunk(ch) {
				added++
			}
		}
	}
	return added
}
