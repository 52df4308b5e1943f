// Package mem implements the physical-frame allocator the spec treats as
// an external collaborator (§1): it hands out single page frames and
// reclaims them. Grounded on biscuit's mem.Physmem_t free-list allocator
// in mem/mem.go, reduced to a single CPU (the spec's Non-goals exclude
// multi-CPU scheduling, so biscuit's per-CPU free lists are not needed)
// and returning host-addressable pages instead of raw physical memory.
package mem

import (
	"sync"

	"github.com/oichkatzele/rvos/config"
)

// PPN is a physical page number: a frame identity, not a byte address.
type PPN uint64

// Page is a single physical page of memory, host-addressable.
type Page [config.PGSIZE]byte

// Zero clears the page to all zero bytes.
func (p *Page) Zero() {
	for i := range p {
		p[i] = 0
	}
}

type frame struct {
	pg    Page
	nexti int32 // index of next free frame, or -1
}

// FrameAllocator hands out and reclaims physical page frames. It mirrors
// biscuit's Physmem_t free-list design: an index-linked free list protected
// by a single mutex, with frames allocated from a fixed backing arena
// sized at construction time (biscuit reserves a fixed pool of pages at
// Phys_init time for the same reason: the kernel never manages memory it
// did not reserve up front).
type FrameAllocator struct {
	mu      sync.Mutex
	frames  []frame
	freei   int32 // index of first free frame, or -1
	freelen int
}

// -1 sentinel mirrors biscuit's ^uint32(0) "end of free list" marker,
// adapted to a signed index so zero remains a valid frame index.
const none int32 = -1

// NewFrameAllocator reserves n frames and returns an allocator that hands
// them out and reclaims them on a free list.
func NewFrameAllocator(n int) *FrameAllocator {
	fa := &FrameAllocator{
		frames: make([]frame, n),
	}
	fa.freei = none
	for i := n - 1; i >= 0; i-- {
		fa.frames[i].nexti = fa.freei
		fa.freei = int32(i)
		fa.freelen++
	}
	return fa
}

// Alloc reserves one zeroed frame and returns its PPN. ok is false if the
// allocator is exhausted.
func (fa *FrameAllocator) Alloc() (PPN, bool) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.freei == none {
		return 0, false
	}
	idx := fa.freei
	fa.freei = fa.frames[idx].nexti
	fa.freelen--
	fa.frames[idx].pg.Zero()
	return PPN(idx), true
}

// Free returns a frame to the free list.
func (fa *FrameAllocator) Free(p PPN) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	idx := int32(p)
	fa.frames[idx].nexti = fa.freei
	fa.freei = idx
	fa.freelen++
}

// Page returns the backing storage for the given frame.
func (fa *FrameAllocator) Page(p PPN) *Page {
	return &fa.frames[p].pg
}

// Free_count reports the number of frames still available, for tests and
// diagnostics (mirrors biscuit's Physmem.Pgcount()).
func (fa *FrameAllocator) Free_count() int {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return fa.freelen
}
