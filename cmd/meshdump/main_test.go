package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"mini-mc-polygen/internal/meshing"
	"mini-mc-polygen/internal/registry"
	"mini-mc-polygen/internal/vbo"
	"mini-mc-polygen/internal/world"
)

func TestRunFramesAndDump(t *testing.T) {
	w := world.NewSized(4, 2)
	if n := w.Populate(world.NewFlatGenerator(3), 0, 0, 1); n != 9 {
		t.Fatalf("populated: got %d chunks, want 9", n)
	}
	arena := vbo.NewArena(16)
	mesher := meshing.NewGenerator(w, registry.Default(), arena, nil, meshing.Options{
		DebounceFrames: 2,
		Logger:         meshing.DiscardLogger(),
	})
	sched := meshing.NewScheduler(mesher, 3, 0)
	defer sched.Shutdown()

	frames := runFrames(w, mesher, sched, 1000, time.Millisecond)
	if frames >= 1000 {
		t.Fatal("frame loop did not settle")
	}
	if mesher.Pending() != 0 || len(w.DirtyChunks()) != 0 {
		t.Fatalf("unsettled: %d pending, %d dirty", mesher.Pending(), len(w.DirtyChunks()))
	}

	var total int
	for _, ch := range w.Chunks() {
		for _, cl := range ch.Clusters {
			total += cl.Vertices + cl.TransparentVertices
		}
	}
	if total == 0 {
		t.Fatal("expected published geometry")
	}

	var buf bytes.Buffer
	n, err := encodeDump(&buf, w)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := readDump(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != n {
		t.Fatalf("clusters: got %d, want %d", len(got), n)
	}
	var read int
	for _, c := range got {
		read += len(c.OpaqueVertices) + len(c.TransparentVertices)
		cl := w.GetChunk(int(c.ChunkX), int(c.ChunkZ)).Clusters[c.ClusterY]
		if int(c.Opaque) != cl.Vertices {
			t.Fatalf("cluster (%d,%d,%d): got %d vertices, want %d", c.ChunkX, c.ChunkZ, c.ClusterY, c.Opaque, cl.Vertices)
		}
		if cl.Vertices > 0 && c.OpaqueVertices[0] != meshing.Vertices(cl.VBO)[0] {
			t.Fatalf("cluster (%d,%d,%d): first vertex differs", c.ChunkX, c.ChunkZ, c.ClusterY)
		}
	}
	if read != total {
		t.Fatalf("vertices read: got %d, want %d", read, total)
	}
}

func TestReadDumpRejectsGarbage(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	enc.Write([]byte("NOPE0000"))
	enc.Close()

	if _, err := readDump(&buf); !errors.Is(err, errBadDump) {
		t.Fatalf("got %v, want errBadDump", err)
	}
}
