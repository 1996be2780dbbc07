// Package meshing turns clusters of blocks into vertex streams and publishes
// them to the render thread.
//
// Mesh workers call Generator.GenerateChunk; the render thread calls
// Generator.Harvest once per frame. The UpdateQueue between them is the only
// shared state.
package meshing

import (
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"mini-mc-polygen/internal/config"
	"mini-mc-polygen/internal/profiling"
	"mini-mc-polygen/internal/registry"
	"mini-mc-polygen/internal/vbo"
	"mini-mc-polygen/internal/world"
)

// BlockSource is the world storage the mesher reads from. GetBlock must
// return an opaque block for columns that are not loaded.
type BlockSource interface {
	GetBlock(x, y, z int) world.BlockType
	GetChunk(cx, cz int) *world.Chunk
}

// BlockInfo is the block metadata table.
type BlockInfo interface {
	IsOpaque(b world.BlockType) bool
	TextureUV(b world.BlockType, dir world.Direction) (u, v int16)
	Color(b world.BlockType, dir world.Direction) uint16
}

// Allocator hands out vertex memory. Allocate(0) must return the zero block.
type Allocator interface {
	Allocate(size int) vbo.Block
	Free(b vbo.Block)
}

// Viewer supplies the camera position used to seed an interior flood fill.
type Viewer interface {
	Position() mgl32.Vec3
}

// ViewerFunc adapts a function to Viewer.
type ViewerFunc func() mgl32.Vec3

func (f ViewerFunc) Position() mgl32.Vec3 { return f() }

// DebugText receives the on-screen debug line emitted by Harvest.
type DebugText func(format string, args ...any)

// Options configures a Generator.
type Options struct {
	DebounceFrames int
	IconsPerRow    int
	Debug          DebugText
	Logger         *log.Logger
}

// OptionsFromSettings builds Options from the mesh settings.
func OptionsFromSettings(s config.MeshSettings) Options {
	return Options{DebounceFrames: s.DebounceFrames, IconsPerRow: s.IconsPerRow}
}

// Stats are cumulative counters.
type Stats struct {
	ClustersMeshed   uint64
	FacesEmitted     uint64
	UpdatesApplied   uint64
	UpdatesDiscarded uint64
	HarvestsSkipped  uint64
}

// Generator owns the update queue and the collaborators a meshing pass needs.
type Generator struct {
	world  BlockSource
	blocks BlockInfo
	alloc  Allocator
	viewer Viewer

	queue    *UpdateQueue
	iconSize int
	debug    DebugText
	logger   *log.Logger
	closed   atomic.Bool

	clustersMeshed   atomic.Uint64
	facesEmitted     atomic.Uint64
	updatesApplied   atomic.Uint64
	updatesDiscarded atomic.Uint64
	harvestsSkipped  atomic.Uint64
}

// NewGenerator wires the mesher to its collaborators. viewer may be nil.
func NewGenerator(w BlockSource, blocks BlockInfo, alloc Allocator, viewer Viewer, opts Options) *Generator {
	if opts.IconsPerRow <= 0 {
		opts.IconsPerRow = registry.DefaultIconsPerRow
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "[meshing] ", log.LstdFlags|log.Lmsgprefix)
	}
	return &Generator{
		world:    w,
		blocks:   blocks,
		alloc:    alloc,
		viewer:   viewer,
		queue:    NewUpdateQueue(opts.DebounceFrames),
		iconSize: registry.FixedOne / opts.IconsPerRow,
		debug:    opts.Debug,
		logger:   opts.Logger,
	}
}

// DiscardLogger is a logger that drops everything, for tests and tools.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// Queue exposes the pending-update queue.
func (g *Generator) Queue() *UpdateQueue {
	return g.queue
}

// Pending returns the number of updates waiting for the render thread.
func (g *Generator) Pending() int {
	return g.queue.Len()
}

// Stats returns a snapshot of the counters.
func (g *Generator) Stats() Stats {
	return Stats{
		ClustersMeshed:   g.clustersMeshed.Load(),
		FacesEmitted:     g.facesEmitted.Load(),
		UpdatesApplied:   g.updatesApplied.Load(),
		UpdatesDiscarded: g.updatesDiscarded.Load(),
		HarvestsSkipped:  g.harvestsSkipped.Load(),
	}
}

// GenerateChunk meshes every cluster of ch whose blocks changed since its last
// mesh (or that was forced) and queues one update per meshed cluster. It is
// the job scheduler's entry point and runs on a worker; at most one call per
// chunk may be in flight. Returns the number of updates queued.
func (g *Generator) GenerateChunk(ch *world.Chunk) int {
	defer profiling.Track("meshing.GenerateChunk")()
	if g.closed.Load() {
		return 0
	}
	rev := ch.BeginRemesh()

	sc := getScratch(ch.ClusterSize())
	defer putScratch(sc)

	var viewPos mgl32.Vec3
	if g.viewer != nil {
		viewPos = g.viewer.Position()
	}

	queued := 0
	for _, cl := range ch.Clusters {
		if !cl.ClaimMesh() {
			continue
		}
		var viewer *[3]int
		if g.viewer != nil {
			viewer = viewerCell(viewPos, ch, cl)
		}
		g.queue.Push(g.meshCluster(sc, ch, cl, viewer))
		queued++
	}
	ch.MarkDisplayed(rev)
	return queued
}

// meshCluster runs face extraction and vertex emission for one cluster.
func (g *Generator) meshCluster(sc *scratch, ch *world.Chunk, cl *world.Cluster, viewer *[3]int) PendingUpdate {
	sc.reset()
	p := clusterPass{scratch: sc, world: g.world, blocks: g.blocks, chunk: ch, cluster: cl}
	vis := p.extractFaces(viewer)
	out := p.emitVertices(g.alloc, g.blocks, g.iconSize)

	g.clustersMeshed.Add(1)
	g.facesEmitted.Add(uint64(len(p.faces)))

	return PendingUpdate{
		ChunkX:              ch.X,
		ChunkZ:              ch.Z,
		ClusterY:            cl.Y,
		VBO:                 out.opaque,
		Vertices:            out.opaqueVertices,
		TransparentVBO:      out.transparent,
		TransparentVertices: out.transparentVertices,
		SeeThrough:          vis,
	}
}

// Harvest applies queued updates to their clusters. It must be called once per
// frame from the render thread and never blocks: if a worker holds the queue,
// the frame is skipped.
func (g *Generator) Harvest() int {
	defer profiling.Track("meshing.Harvest")()
	if g.closed.Load() {
		return 0
	}
	res := g.queue.Harvest(g.apply)
	if !res.Locked {
		g.harvestsSkipped.Add(1)
		return 0
	}
	profiling.SetGauge("meshing.VBOUpdates", int64(res.Pending))
	if g.debug != nil {
		g.debug("VBOUpdates %d", res.Pending)
	}
	return res.Applied
}

// apply installs one update. Old buffers are freed only when their vertex
// count says they hold memory.
func (g *Generator) apply(u PendingUpdate) {
	ch := g.world.GetChunk(u.ChunkX, u.ChunkZ)
	if ch == nil || u.ClusterY < 0 || u.ClusterY >= len(ch.Clusters) {
		// The chunk was unloaded while the update was in flight.
		g.alloc.Free(u.VBO)
		g.alloc.Free(u.TransparentVBO)
		g.updatesDiscarded.Add(1)
		g.logger.Printf("discarding update for unloaded chunk (%d,%d) cluster %d", u.ChunkX, u.ChunkZ, u.ClusterY)
		return
	}

	cl := ch.Clusters[u.ClusterY]
	if cl.Vertices > 0 {
		g.alloc.Free(cl.VBO)
	}
	if cl.TransparentVertices > 0 {
		g.alloc.Free(cl.TransparentVBO)
	}
	cl.VBO = u.VBO
	cl.Vertices = u.Vertices
	cl.TransparentVBO = u.TransparentVBO
	cl.TransparentVertices = u.TransparentVertices
	cl.SeeThrough = u.SeeThrough
	g.updatesApplied.Add(1)
}

// ReleaseChunk frees the published buffers of a chunk that is being unloaded.
// Render thread only.
func (g *Generator) ReleaseChunk(ch *world.Chunk) {
	for _, cl := range ch.Clusters {
		if cl.Vertices > 0 {
			g.alloc.Free(cl.VBO)
		}
		if cl.TransparentVertices > 0 {
			g.alloc.Free(cl.TransparentVBO)
		}
		cl.VBO, cl.Vertices = vbo.Block{}, 0
		cl.TransparentVBO, cl.TransparentVertices = vbo.Block{}, 0
	}
}

// Close stops accepting work and frees every queued update's buffers. Workers
// must be stopped first.
func (g *Generator) Close() {
	if g.closed.Swap(true) {
		return
	}
	n := g.queue.Drain(func(u PendingUpdate) {
		g.alloc.Free(u.VBO)
		g.alloc.Free(u.TransparentVBO)
	})
	if n > 0 {
		g.logger.Printf("dropped %d pending updates on close", n)
	}
}
