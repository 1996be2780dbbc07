package meshing

import (
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"

	"mini-mc-polygen/internal/vbo"
	"mini-mc-polygen/internal/world"
)

// PendingUpdate carries a freshly built cluster mesh from a worker to the
// render thread. The queue owns it between Push and Harvest.
type PendingUpdate struct {
	ChunkX, ChunkZ int
	ClusterY       int

	VBO                 vbo.Block
	Vertices            int
	TransparentVBO      vbo.Block
	TransparentVertices int
	SeeThrough          world.SeeThrough

	// ReadyAt is the harvest frame after which the update may be applied.
	ReadyAt uint64
}

// UpdateQueue is the only state shared between mesh workers and the render
// thread. Workers block briefly to append; the render thread never blocks.
type UpdateQueue struct {
	mu       sync.Mutex
	updates  deque.Deque[PendingUpdate]
	frame    atomic.Uint64
	debounce uint64
}

// NewUpdateQueue creates a queue that holds updates for debounceFrames
// harvests before applying them.
func NewUpdateQueue(debounceFrames int) *UpdateQueue {
	return &UpdateQueue{debounce: uint64(max(debounceFrames, 0))}
}

// Push appends an update, stamping its ReadyAt frame.
func (q *UpdateQueue) Push(u PendingUpdate) {
	u.ReadyAt = q.frame.Load() + q.debounce
	q.mu.Lock()
	q.updates.PushBack(u)
	q.mu.Unlock()
}

// Len returns the number of queued updates.
func (q *UpdateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.updates.Len()
}

// Frame returns the number of harvests that took the lock.
func (q *UpdateQueue) Frame() uint64 {
	return q.frame.Load()
}

// HarvestResult describes one Harvest call.
type HarvestResult struct {
	Locked  bool // false if a producer held the lock and the frame was skipped
	Pending int  // queue length when the lock was taken
	Applied int
}

// Harvest takes the lock without blocking. If it gets it, the frame counter
// advances and, once the oldest update is ready, every queued update is
// applied oldest first. With debounce D an update is applied on the D+1th
// locked harvest after its push.
func (q *UpdateQueue) Harvest(apply func(PendingUpdate)) HarvestResult {
	if !q.mu.TryLock() {
		return HarvestResult{}
	}
	defer q.mu.Unlock()
	frame := q.frame.Add(1)

	res := HarvestResult{Locked: true, Pending: q.updates.Len()}
	if res.Pending == 0 || frame <= q.updates.Front().ReadyAt {
		return res
	}
	for q.updates.Len() > 0 {
		apply(q.updates.PopFront())
		res.Applied++
	}
	return res
}

// Drain removes every queued update regardless of readiness.
func (q *UpdateQueue) Drain(fn func(PendingUpdate)) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for q.updates.Len() > 0 {
		fn(q.updates.PopFront())
		n++
	}
	return n
}
