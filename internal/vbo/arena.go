// Package vbo provides the vertex-buffer memory allocator used by the mesher.
//
// Blocks are handed out from power-of-two size classes. Freed blocks are kept
// on a per-class free list and reused, so steady-state remeshing does not
// churn the garbage collector.
package vbo

import (
	"fmt"
	"math/bits"
	"sync"
	"unsafe"
)

const (
	minClassShift = 6 // 64 bytes
	maxClassShift = 26

	// Alignment of every block's memory.
	Alignment = 16
)

// Block is a handle to allocated vertex memory. The zero Block is "no memory"
// and is what a zero-size allocation returns.
type Block struct {
	id     uint64
	size   int
	memory []byte
}

// Size returns the requested size in bytes.
func (b Block) Size() int {
	return b.size
}

// Bytes returns the block's memory, sliced to the requested size.
func (b Block) Bytes() []byte {
	return b.memory[:b.size:b.size]
}

// IsZero reports whether the block holds no memory.
func (b Block) IsZero() bool {
	return b.id == 0
}

// Pointer returns the address of the first byte, or nil for the zero block.
func (b Block) Pointer() unsafe.Pointer {
	if b.IsZero() || len(b.memory) == 0 {
		return nil
	}
	return unsafe.Pointer(&b.memory[0])
}

// Stats is a snapshot of arena usage.
type Stats struct {
	LiveBlocks  int
	LiveBytes   int
	CachedBytes int
	Allocs      uint64
	Reuses      uint64
}

// Arena hands out vertex memory. It is safe for concurrent use: mesh workers
// allocate while the render thread frees.
type Arena struct {
	mu        sync.Mutex
	nextID    uint64
	live      map[uint64]int // id -> size class
	free      [maxClassShift + 1][][]byte
	maxCached int // per class

	stats Stats
}

// NewArena creates an arena keeping at most maxCachedPerClass freed blocks of
// each size class for reuse.
func NewArena(maxCachedPerClass int) *Arena {
	return &Arena{
		live:      make(map[uint64]int),
		maxCached: maxCachedPerClass,
	}
}

func sizeClass(size int) int {
	if size <= 1<<minClassShift {
		return minClassShift
	}
	return bits.Len(uint(size - 1))
}

// Allocate returns a block of at least size bytes. Zero size allocates nothing
// and returns the zero Block.
func (a *Arena) Allocate(size int) Block {
	if size <= 0 {
		return Block{}
	}
	class := sizeClass(size)
	if class > maxClassShift {
		panic(fmt.Sprintf("vbo: allocation of %d bytes exceeds the largest size class", size))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var mem []byte
	if list := a.free[class]; len(list) > 0 {
		mem = list[len(list)-1]
		a.free[class] = list[:len(list)-1]
		a.stats.CachedBytes -= len(mem)
		a.stats.Reuses++
		clear(mem[:size])
	} else {
		mem = alignedBytes(1 << class)
	}

	a.nextID++
	id := a.nextID
	a.live[id] = class
	a.stats.LiveBlocks++
	a.stats.LiveBytes += size
	a.stats.Allocs++
	return Block{id: id, size: size, memory: mem}
}

// Free releases a block back to the arena. Freeing the zero Block is a no-op.
// Freeing a block twice, or one that came from another arena, panics.
func (a *Arena) Free(b Block) {
	if b.IsZero() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	class, ok := a.live[b.id]
	if !ok {
		panic(fmt.Sprintf("vbo: free of unallocated block %d", b.id))
	}
	delete(a.live, b.id)
	a.stats.LiveBlocks--
	a.stats.LiveBytes -= b.size

	if len(a.free[class]) < a.maxCached {
		a.free[class] = append(a.free[class], b.memory)
		a.stats.CachedBytes += len(b.memory)
	}
}

// Stats returns a snapshot of the arena counters.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Trim drops every cached free block.
func (a *Arena) Trim() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.free {
		a.free[i] = nil
	}
	a.stats.CachedBytes = 0
}

func alignedBytes(n int) []byte {
	buf := make([]byte, n+Alignment)
	off := int(uintptr(unsafe.Pointer(&buf[0])) & (Alignment - 1))
	if off != 0 {
		off = Alignment - off
	}
	return buf[off : off+n : off+n]
}
