package meshing

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mini-mc-polygen/internal/vbo"
	"mini-mc-polygen/internal/world"
)

// blockingMesher holds every pass until release is closed.
type blockingMesher struct {
	release chan struct{}
	started chan struct{}
	calls   atomic.Int32
}

func (m *blockingMesher) GenerateChunk(*world.Chunk) int {
	m.calls.Add(1)
	m.started <- struct{}{}
	<-m.release
	return 0
}

func TestSchedulerDeduplicatesInFlightChunks(t *testing.T) {
	m := &blockingMesher{release: make(chan struct{}), started: make(chan struct{}, 4)}
	s := NewScheduler(m, 2, 0)
	defer s.Shutdown()

	ch := world.NewChunk(0, 0, 4, 1)
	if !s.Schedule(ch) {
		t.Fatal("first schedule rejected")
	}
	<-m.started
	if s.Schedule(ch) {
		t.Fatal("chunk scheduled twice while in flight")
	}
	if s.QueueLength() != 1 {
		t.Fatalf("queue length: got %d, want 1", s.QueueLength())
	}
	close(m.release)
	s.Wait()

	if got := m.calls.Load(); got != 1 {
		t.Fatalf("passes: got %d, want 1", got)
	}
	if !s.Schedule(ch) {
		t.Fatal("schedule after completion rejected")
	}
	s.Wait()
}

func TestSchedulerQueueLimit(t *testing.T) {
	m := &blockingMesher{release: make(chan struct{}), started: make(chan struct{}, 4)}
	s := NewScheduler(m, 1, 2)
	defer s.Shutdown()

	accepted := 0
	for x := range 4 {
		if s.Schedule(world.NewChunk(x, 0, 4, 1)) {
			accepted++
		}
	}
	if accepted != 2 {
		t.Fatalf("accepted: got %d, want 2", accepted)
	}
	close(m.release)
	s.Wait()
}

func TestScheduleDirtyMeshesWorld(t *testing.T) {
	w := world.NewSized(4, 2)
	w.Populate(world.NewFlatGenerator(5), 0, 0, 1)
	g := newTestGenerator(w, vbo.NewArena(8), 0)
	s := NewScheduler(g, 4, 0)

	if n := s.ScheduleDirty(w); n != 9 {
		t.Fatalf("scheduled: got %d, want 9", n)
	}
	s.Wait()
	for _, ch := range w.Chunks() {
		if ch.DisplayRevision() != ch.Revision() {
			t.Fatalf("chunk (%d,%d): display revision %d, revision %d", ch.X, ch.Z, ch.DisplayRevision(), ch.Revision())
		}
	}
	if len(w.DirtyChunks()) != 0 {
		t.Fatal("world still dirty after a full pass")
	}
	if g.Pending() != 9*2 {
		t.Fatalf("pending: got %d, want %d", g.Pending(), 9*2)
	}
	s.Shutdown()
	if s.Schedule(w.GetChunk(0, 0)) {
		t.Fatal("schedule accepted after shutdown")
	}
}

func TestConcurrentPassesDoNotShareScratch(t *testing.T) {
	w := world.NewSized(8, 2)
	w.Populate(world.NewGenerator(9, w.Height()), 0, 0, 2)
	arena := vbo.NewArena(32)
	g := newTestGenerator(w, arena, 0)

	// reference: sequential
	want := map[world.ChunkCoord][]int{}
	for _, ch := range w.Chunks() {
		g.GenerateChunk(ch)
	}
	g.Harvest()
	for _, ch := range w.Chunks() {
		for _, cl := range ch.Clusters {
			want[ch.Coord()] = append(want[ch.Coord()], cl.Vertices+cl.TransparentVertices)
		}
		ch.ForceRemesh()
	}

	var wg sync.WaitGroup
	for _, ch := range w.Chunks() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.GenerateChunk(ch)
		}()
	}
	wg.Wait()
	g.Harvest()

	for _, ch := range w.Chunks() {
		for i, cl := range ch.Clusters {
			if got := cl.Vertices + cl.TransparentVertices; got != want[ch.Coord()][i] {
				t.Fatalf("chunk (%d,%d) cluster %d: got %d vertices, want %d", ch.X, ch.Z, i, got, want[ch.Coord()][i])
			}
		}
	}
}

func TestScheduleOnStoppedPoolIsRejected(t *testing.T) {
	m := &blockingMesher{release: make(chan struct{}), started: make(chan struct{}, 4)}
	close(m.release)
	s := NewScheduler(m, 1, 0)
	s.pool.StopAndWait()

	if s.Schedule(world.NewChunk(0, 0, 4, 1)) {
		t.Fatal("schedule accepted by a stopped pool")
	}
	if s.QueueLength() != 0 {
		t.Fatalf("queue length: got %d, want 0", s.QueueLength())
	}
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait blocked on a rejected chunk")
	}
}

func TestScheduleRacingShutdown(t *testing.T) {
	m := &blockingMesher{release: make(chan struct{}), started: make(chan struct{}, 64)}
	close(m.release)
	s := NewScheduler(m, 2, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for x := range 32 {
			s.Schedule(world.NewChunk(x, 0, 4, 1))
		}
	}()
	s.Shutdown()
	wg.Wait()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Wait blocked with %d chunks in flight", s.QueueLength())
	}
}
