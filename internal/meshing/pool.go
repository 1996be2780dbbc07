package meshing

import (
	"errors"
	"sync"

	"github.com/alitto/pond/v2"

	"mini-mc-polygen/internal/world"
)

// ChunkMesher is the work a Scheduler runs for each chunk.
type ChunkMesher interface {
	GenerateChunk(ch *world.Chunk) int
}

// Scheduler runs chunk meshing passes on a worker pool. A chunk is never
// meshed by two workers at once.
type Scheduler struct {
	mesher    ChunkMesher
	pool      pond.Pool
	maxQueued int

	mu       sync.Mutex
	inFlight map[world.ChunkCoord]struct{}
	wg       sync.WaitGroup
	stopped  bool
}

// NewScheduler creates a scheduler with the given number of workers. At most
// maxQueued chunks may be waiting or running; 0 means unbounded.
func NewScheduler(mesher ChunkMesher, workers, maxQueued int) *Scheduler {
	return &Scheduler{
		mesher:    mesher,
		pool:      pond.NewPool(max(workers, 1)),
		maxQueued: maxQueued,
		inFlight:  make(map[world.ChunkCoord]struct{}),
	}
}

// Schedule submits ch for meshing. Returns false if the chunk is already
// queued, the scheduler is full, or it has been shut down.
func (s *Scheduler) Schedule(ch *world.Chunk) bool {
	coord := ch.Coord()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	if _, ok := s.inFlight[coord]; ok {
		s.mu.Unlock()
		return false
	}
	if s.maxQueued > 0 && len(s.inFlight) >= s.maxQueued {
		s.mu.Unlock()
		return false
	}
	s.inFlight[coord] = struct{}{}
	s.wg.Add(1)
	defer s.mu.Unlock()

	// The task cannot finish while s.mu is held, so a closed Done channel
	// here means the pool refused it.
	task := s.pool.Submit(func() {
		defer s.done(coord)
		s.mesher.GenerateChunk(ch)
	})
	select {
	case <-task.Done():
		if errors.Is(task.Wait(), pond.ErrPoolStopped) {
			delete(s.inFlight, coord)
			s.wg.Done()
			return false
		}
	default:
	}
	return true
}

func (s *Scheduler) done(coord world.ChunkCoord) {
	s.mu.Lock()
	delete(s.inFlight, coord)
	s.mu.Unlock()
	s.wg.Done()
}

// ScheduleDirty submits every chunk of w that needs a remesh and returns how
// many were accepted.
func (s *Scheduler) ScheduleDirty(w *world.World) int {
	n := 0
	for _, ch := range w.DirtyChunks() {
		if s.Schedule(ch) {
			n++
		}
	}
	return n
}

// Wait blocks until every scheduled chunk has been meshed.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// QueueLength returns the number of chunks waiting or running.
func (s *Scheduler) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// RunningWorkers returns the number of busy workers.
func (s *Scheduler) RunningWorkers() int64 {
	return s.pool.RunningWorkers()
}

// Shutdown rejects new work and waits for running passes to finish.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.pool.StopAndWait()
}
