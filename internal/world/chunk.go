package world

import "sync/atomic"

// Chunk is a vertical stack of clusters sharing one (X, Z) column.
type Chunk struct {
	X, Z     int
	Clusters []*Cluster

	size            int
	revision        atomic.Uint32
	displayRevision atomic.Uint32
	forceVBOUpdate  atomic.Bool
}

// NewChunk creates an empty chunk at the specified chunk coordinates.
func NewChunk(x, z, clusterSize, clusters int) *Chunk {
	c := &Chunk{
		X:        x,
		Z:        z,
		Clusters: make([]*Cluster, clusters),
		size:     clusterSize,
	}
	for i := range c.Clusters {
		c.Clusters[i] = NewCluster(i, clusterSize)
	}
	c.revision.Store(1)
	return c
}

// Coord returns the chunk's grid coordinates.
func (c *Chunk) Coord() ChunkCoord {
	return ChunkCoord{X: c.X, Z: c.Z}
}

// ClusterSize returns the edge length of each cluster.
func (c *Chunk) ClusterSize() int {
	return c.size
}

// Height returns the column height in blocks.
func (c *Chunk) Height() int {
	return c.size * len(c.Clusters)
}

// GetBlock returns the block at chunk-local coordinates (y spans the column).
func (c *Chunk) GetBlock(x, y, z int) BlockType {
	if y < 0 || y >= c.Height() {
		return BlockTypeAir
	}
	return c.Clusters[y/c.size].Block(x, y%c.size, z)
}

// SetBlock sets the block at chunk-local coordinates.
func (c *Chunk) SetBlock(x, y, z int, b BlockType) bool {
	if y < 0 || y >= c.Height() {
		return false
	}
	if c.Clusters[y/c.size].SetBlock(x, y%c.size, z, b) {
		c.revision.Add(1)
		return true
	}
	return false
}

// Revision is bumped whenever any cluster of the chunk changes.
func (c *Chunk) Revision() uint32 {
	return c.revision.Load()
}

// DisplayRevision is the chunk revision that was last fully meshed.
func (c *Chunk) DisplayRevision() uint32 {
	return c.displayRevision.Load()
}

// NeedsRemesh reports whether the chunk has changes that were not meshed yet.
func (c *Chunk) NeedsRemesh() bool {
	return c.revision.Load() != c.displayRevision.Load() || c.forceVBOUpdate.Load()
}

// BeginRemesh clears the chunk's force flag and returns the revision a
// meshing pass is about to cover.
func (c *Chunk) BeginRemesh() uint32 {
	c.forceVBOUpdate.Store(false)
	return c.revision.Load()
}

// MarkDisplayed records that revision rev has been meshed.
func (c *Chunk) MarkDisplayed(rev uint32) {
	c.displayRevision.Store(rev)
}

// ForceRemesh forces every cluster to be meshed again.
func (c *Chunk) ForceRemesh() {
	for _, cl := range c.Clusters {
		cl.ForceVBOUpdate()
	}
	c.forceVBOUpdate.Store(true)
}

// touchCluster bumps a single cluster because a neighbor's boundary changed.
func (c *Chunk) touchCluster(i int) {
	if i < 0 || i >= len(c.Clusters) {
		return
	}
	c.Clusters[i].Touch()
	c.revision.Add(1)
}
