package world

import (
	"sync/atomic"

	"mini-mc-polygen/internal/vbo"
)

// Cluster is a cubic grid of blocks, one vertical slot of a chunk and the
// unit of meshing.
//
// Block data and revision counters may be read from mesh workers. The published
// mesh fields are written only by the harvesting (render) thread.
type Cluster struct {
	Y int

	size   int
	blocks []BlockType

	revision       atomic.Uint32
	vboRevision    uint32
	forceVBOUpdate atomic.Bool

	VBO                 vbo.Block
	Vertices            int
	TransparentVBO      vbo.Block
	TransparentVertices int
	SeeThrough          SeeThrough
}

// NewCluster creates an all-air cluster with the given edge length.
// A fresh cluster starts one revision ahead of its mesh so it gets meshed.
func NewCluster(y, size int) *Cluster {
	c := &Cluster{
		Y:      y,
		size:   size,
		blocks: make([]BlockType, size*size*size),
	}
	c.revision.Store(1)
	return c
}

func (c *Cluster) index(x, y, z int) int {
	return x*c.size*c.size + y*c.size + z
}

// Size returns the edge length of the cluster.
func (c *Cluster) Size() int {
	return c.size
}

// InBounds reports whether local coordinates fall inside the cluster.
func (c *Cluster) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < c.size && y < c.size && z < c.size
}

// Block returns the block at local coordinates. Out-of-range reads return air.
func (c *Cluster) Block(x, y, z int) BlockType {
	if !c.InBounds(x, y, z) {
		return BlockTypeAir
	}
	return c.blocks[c.index(x, y, z)]
}

// SetBlock stores a block at local coordinates and bumps the revision when the
// value changed. It reports whether anything changed.
func (c *Cluster) SetBlock(x, y, z int, b BlockType) bool {
	if !c.InBounds(x, y, z) {
		return false
	}
	i := c.index(x, y, z)
	if c.blocks[i] == b {
		return false
	}
	c.blocks[i] = b
	c.revision.Add(1)
	return true
}

// Revision is bumped every time block data changes.
func (c *Cluster) Revision() uint32 {
	return c.revision.Load()
}

// Touch bumps the revision without changing blocks, e.g. when a neighbor's
// boundary changed.
func (c *Cluster) Touch() {
	c.revision.Add(1)
}

// ForceVBOUpdate requests a remesh even if the revision did not change.
func (c *Cluster) ForceVBOUpdate() {
	c.forceVBOUpdate.Store(true)
}

// NeedsMesh reports whether the published mesh is behind the block data.
func (c *Cluster) NeedsMesh() bool {
	return c.revision.Load() != c.vboRevision || c.forceVBOUpdate.Load()
}

// ClaimMesh marks the current revision as meshed and clears the force flag.
// It returns false when the cluster was already up to date. Only the worker
// that owns the parent chunk may call it.
func (c *Cluster) ClaimMesh() bool {
	rev := c.revision.Load()
	forced := c.forceVBOUpdate.Swap(false)
	if rev == c.vboRevision && !forced {
		return false
	}
	c.vboRevision = rev
	return true
}
