package vm

import (
	"sync"

	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/defs"
	"github.com/oichkatzele/rvos/internal/kutil"
	"github.com/oichkatzele/rvos/mem"
)

// MapType distinguishes how a MapArea's pages are backed. The spec's VM
// model only ever frames anonymous memory (§4.2); Identical is kept for
// API symmetry with biscuit/rCore's kernel identity map, even though this
// hosted port has no real physical kernel to identity-map.
type MapType int

const (
	Framed MapType = iota
	Identical
)

// MapArea is a contiguous VPN range, its permissions, and (for Framed
// areas) the frames backing each mapped page (spec.md §3 "Memory Set").
type MapArea struct {
	StartVPN VPN
	EndVPN   VPN // exclusive
	Perm     Perm
	Mtype    MapType
	frames   map[VPN]mem.PPN // owning handles, Framed areas only
}

func (a *MapArea) contains(vpn VPN) bool { return vpn >= a.StartVPN && vpn < a.EndVPN }

func (a *MapArea) overlaps(start, end VPN) bool {
	return a.StartVPN < end && start < a.EndVPN
}

// MemorySet owns a page table plus an ordered collection of MapAreas
// (spec.md §3, §4.2). Mirrors biscuit's Vm_t / rCore's MemorySet.
type MemorySet struct {
	mu     sync.Mutex
	pt     *PageTable
	frame  *mem.FrameAllocator
	areas  []*MapArea
}

// NewMemorySet creates an empty address space backed by the given frame
// allocator.
func NewMemorySet(frame *mem.FrameAllocator) *MemorySet {
	return &MemorySet{
		pt:    NewPageTable(frame),
		frame: frame,
	}
}

// Token returns the token identifying this memory set's page table.
func (ms *MemorySet) Token() Token { return ms.pt.Token() }

// PageTable exposes the underlying table, e.g. for Translate() in mmap's
// overlap check.
func (ms *MemorySet) PageTable() *PageTable { return ms.pt }

// Translate looks up vpn in the page table (which has its own lock)
// without taking ms's own lock.
func (ms *MemorySet) Translate(vpn VPN) (PTE, bool) {
	return ms.pt.Translate(vpn)
}

func (ms *MemorySet) overlapsAny(start, end VPN) bool {
	for _, a := range ms.areas {
		if a.overlaps(start, end) {
			return true
		}
	}
	return false
}

// InsertFramedArea maps [startVA, endVA) as a private anonymous region with
// the given permissions, allocating frames immediately (spec.md §4.2:
// "Allocates frames on insertion and maps every contained VPN"). perm must
// include U, else EINVAL is returned. Returns EFAULT if the range overlaps
// an existing area, and ENOMEM (after releasing the frames it had taken)
// if no frames remain.
func (ms *MemorySet) InsertFramedArea(startVA, endVA int, perm Perm) defs.Err_t {
	if perm&PERM_U == 0 {
		return defs.EINVAL
	}
	start := PageOf(kutil.Rounddown(startVA, config.PGSIZE))
	end := PageOf(kutil.Roundup(endVA, config.PGSIZE))

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.overlapsAny(start, end) {
		return defs.EFAULT
	}
	area := &MapArea{StartVPN: start, EndVPN: end, Perm: perm, Mtype: Framed, frames: map[VPN]mem.PPN{}}
	for vpn := start; vpn < end; vpn++ {
		ppn, ok := ms.frame.Alloc()
		if !ok {
			// roll back partially allocated frames before failing, matching
			// the mmap contract's "no partial change" guarantee (§4.4).
			for v, p := range area.frames {
				ms.pt.Unmap(v)
				ms.frame.Free(p)
			}
			return defs.ENOMEM
		}
		area.frames[vpn] = ppn
		ms.pt.Map(vpn, ppn, perm)
	}
	ms.areas = append(ms.areas, area)
	return 0
}

// Unmap removes vpn's page from the MapArea covering it and frees its
// frame (the caller has verified the mapping exists, per spec.md §4.2).
// The MapArea itself is dropped once it has no pages left; until then its
// VPN range is unchanged.
func (ms *MemorySet) Unmap(vpn VPN) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for i, a := range ms.areas {
		if !a.contains(vpn) {
			continue
		}
		ms.pt.Unmap(vpn)
		if ppn, ok := a.frames[vpn]; ok {
			ms.frame.Free(ppn)
			delete(a.frames, vpn)
		}
		if len(a.frames) == 0 {
			ms.areas = append(ms.areas[:i], ms.areas[i+1:]...)
		}
		return
	}
}

// RecycleDataPages drops all framed user areas, releasing their backing
// frames. Called at process exit before the TCB itself is reaped
// (spec.md §4.5 "exit").
func (ms *MemorySet) RecycleDataPages() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, a := range ms.areas {
		if a.Mtype != Framed {
			continue
		}
		for vpn, ppn := range a.frames {
			ms.pt.Unmap(vpn)
			ms.frame.Free(ppn)
		}
	}
	ms.areas = nil
}

// Activate is a no-op in this hosted port: there is no MMU to install a
// root into. Kept for API fidelity with biscuit's Vm_t.activate() /
// rCore's MemorySet::activate(), which the syscall dispatcher would call
// on every address-space switch on real hardware.
func (ms *MemorySet) Activate() {}

// Areas returns the memory set's MapAreas, for tests asserting the
// no-overlap / framed-VPN-count invariants in spec.md §8.
func (ms *MemorySet) Areas() []*MapArea {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]*MapArea, len(ms.areas))
	copy(out, ms.areas)
	return out
}

// FromExisted deep-copies every MapArea of src into a new MemorySet: new
// frames are allocated and the source page contents are copied byte for
// byte (spec.md §4.2 "Used by fork"). The clone gets a fresh page table and
// token.
func FromExisted(src *MemorySet, frame *mem.FrameAllocator) *MemorySet {
	src.mu.Lock()
	defer src.mu.Unlock()

	dst := NewMemorySet(frame)
	for _, a := range src.areas {
		na := &MapArea{StartVPN: a.StartVPN, EndVPN: a.EndVPN, Perm: a.Perm, Mtype: a.Mtype, frames: map[VPN]mem.PPN{}}
		for vpn, srcPPN := range a.frames {
			dstPPN, ok := frame.Alloc()
			if !ok {
				panic("out of frames during fork copy")
			}
			*frame.Page(dstPPN) = *frame.Page(srcPPN)
			na.frames[vpn] = dstPPN
			dst.pt.Map(vpn, dstPPN, a.Perm)
		}
		dst.areas = append(dst.areas, na)
	}
	return dst
}
