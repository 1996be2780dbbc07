package vbo

import (
	"sync"
	"testing"
	"unsafe"
)

func TestZeroSizeAllocation(t *testing.T) {
	a := NewArena(4)
	b := a.Allocate(0)
	if !b.IsZero() {
		t.Fatal("zero-size allocation should return the zero block")
	}
	a.Free(b) // no-op
	if s := a.Stats(); s.LiveBlocks != 0 || s.Allocs != 0 {
		t.Fatalf("zero-size allocation touched the arena: %+v", s)
	}
}

func TestAllocateFreeReuse(t *testing.T) {
	a := NewArena(4)
	b := a.Allocate(100)
	if b.Size() != 100 || len(b.Bytes()) != 100 {
		t.Fatalf("size: got %d, want 100", b.Size())
	}
	if uintptr(b.Pointer())%Alignment != 0 {
		t.Fatalf("block not aligned to %d", Alignment)
	}
	b.Bytes()[0] = 42
	if s := a.Stats(); s.LiveBlocks != 1 || s.LiveBytes != 100 {
		t.Fatalf("live stats: got %+v", s)
	}

	a.Free(b)
	if s := a.Stats(); s.LiveBlocks != 0 || s.CachedBytes != 128 {
		t.Fatalf("after free: got %+v", s)
	}

	c := a.Allocate(120) // same 128-byte class
	if s := a.Stats(); s.Reuses != 1 {
		t.Fatalf("expected reuse, got %+v", s)
	}
	if c.Bytes()[0] != 0 {
		t.Fatal("reused memory should be cleared")
	}
	if unsafe.Pointer(&c.Bytes()[0]) != b.Pointer() {
		t.Fatal("expected the freed memory to be handed out again")
	}
}

func TestDoubleFreePanics(t *testing.T) {
	a := NewArena(4)
	b := a.Allocate(10)
	a.Free(b)
	defer func() {
		if recover() == nil {
			t.Fatal("double free should panic")
		}
	}()
	a.Free(b)
}

func TestCacheLimit(t *testing.T) {
	a := NewArena(1)
	x := a.Allocate(64)
	y := a.Allocate(64)
	a.Free(x)
	a.Free(y)
	if s := a.Stats(); s.CachedBytes != 64 {
		t.Fatalf("cached bytes: got %d, want 64", s.CachedBytes)
	}
	a.Trim()
	if s := a.Stats(); s.CachedBytes != 0 {
		t.Fatalf("after trim: got %d, want 0", s.CachedBytes)
	}
}

func TestConcurrentAllocateFree(t *testing.T) {
	a := NewArena(8)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 200 {
				b := a.Allocate(12 * (n + j + 1))
				a.Free(b)
			}
		}(i)
	}
	wg.Wait()
	if s := a.Stats(); s.LiveBlocks != 0 || s.LiveBytes != 0 {
		t.Fatalf("leaked blocks: %+v", s)
	}
}
