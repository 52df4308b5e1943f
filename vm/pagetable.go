// Package vm implements per-process address spaces: page tables, framed
// memory regions, cross-address-space translation, and the mmap/munmap
// policy over them (spec.md §4.1, §4.2).
//
// Grounded on biscuit's vm.Vm_t (vm/as.go) and mem.Pmap_t (mem/mem.go), with
// one deliberate hosting adaptation: biscuit walks a real, unsafe-pointer
// multi-level page table because it runs in kernel mode on real hardware.
// A Go process hosting this kernel core cannot fabricate or walk hardware
// page tables, so PageTable stores its PTEs in a map keyed by virtual page
// number instead. Every operation the spec names against a page table
// (translate, byte-buffer translation, string/ref translation, overlap
// checks) keeps the same contract and edge cases; only the table's storage
// is hosted-native. See SPEC_FULL.md §0 and DESIGN.md.
package vm

import (
	"sync"

	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/internal/kutil"
	"github.com/oichkatzele/rvos/mem"
)

// Perm is a page permission mask, the powerset of {R, W, X, U} from §3.
type Perm uint8

const (
	PERM_R Perm = 1 << iota
	PERM_W
	PERM_X
	PERM_U
)

// VPN is a virtual page number.
type VPN uint64

// PageOf rounds a virtual address down to its containing page number.
func PageOf(va int) VPN {
	return VPN(kutil.Rounddown(va, config.PGSIZE) >> config.PGSHIFT)
}

// PTE is a single page-table entry: a physical frame plus permission bits.
// Mirrors the fields of biscuit's packed Pa_t PTE word (mem.PTE_P/W/U/...)
// without the bit-packing, since we are not walking real hardware tables.
type PTE struct {
	PPN   mem.PPN
	Perm  Perm
	Valid bool
}

// PageTable is a per-address-space translation table, identified by a
// Token. Token plays the role of biscuit's pmap root PPN / "satp" value:
// an opaque handle a caller uses to address a *different* process's table
// without holding a direct reference to it.
type PageTable struct {
	mu    sync.RWMutex
	table map[VPN]*PTE
	frame *mem.FrameAllocator
	token Token
}

// Token is an opaque page-table identifier, analogous to a RISC-V satp
// value or biscuit's pmap root PPN.
type Token uint64

var (
	tokMu   sync.Mutex
	tokNext Token = 1
	tokReg        = map[Token]*PageTable{}
)

// NewPageTable allocates an empty page table backed by the given frame
// allocator and registers it under a fresh token.
func NewPageTable(frame *mem.FrameAllocator) *PageTable {
	pt := &PageTable{
		table: make(map[VPN]*PTE),
		frame: frame,
	}
	tokMu.Lock()
	pt.token = tokNext
	tokNext++
	tokReg[pt.token] = pt
	tokMu.Unlock()
	return pt
}

// Token returns the opaque identifier other address spaces use to reach
// into this page table (PageTableFor).
func (pt *PageTable) Token() Token { return pt.token }

// Frames returns the frame allocator backing this page table's mappings,
// the way biscuit's translation helpers reach through mem.Physmem.Dmap to
// turn a physical frame into an addressable byte page.
func (pt *PageTable) Frames() *mem.FrameAllocator { return pt.frame }

// PageTableFor resolves a token back to its page table. Used by the
// translation helpers in userbuf.go, which accept a token rather than a
// *PageTable so they read exactly like biscuit's translated_byte_buffer(token, ...).
func PageTableFor(tok Token) (*PageTable, bool) {
	tokMu.Lock()
	defer tokMu.Unlock()
	pt, ok := tokReg[tok]
	return pt, ok
}

// Unregister removes the table from the token registry, after which
// PageTableFor no longer resolves its token. MemorySet teardown
// (RecycleDataPages) does not call it, so a torn-down memory set's token
// stays registered.
func (pt *PageTable) Unregister() {
	tokMu.Lock()
	delete(tokReg, pt.token)
	tokMu.Unlock()
}

// Map installs a mapping for vpn. It allocates no frame; the caller
// supplies one (Insert_framed_area / ELF loading own allocation).
func (pt *PageTable) Map(vpn VPN, ppn mem.PPN, perm Perm) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.table[vpn] = &PTE{PPN: ppn, Perm: perm, Valid: true}
}

// Unmap removes the mapping for vpn, if any.
func (pt *PageTable) Unmap(vpn VPN) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	delete(pt.table, vpn)
}

// Translate returns the leaf PTE for vpn if present (spec.md §4.1).
func (pt *PageTable) Translate(vpn VPN) (PTE, bool) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	e, ok := pt.table[vpn]
	if !ok {
		return PTE{}, false
	}
	return *e, true
}

// Valid reports whether vpn currently has a valid mapping. Used by
// munmap's check that every VPN in its range is mapped (§4.4); mmap's
// overlap check goes through MemorySet's area ranges instead.
func (pt *PageTable) Valid(vpn VPN) bool {
	_, ok := pt.Translate(vpn)
	return ok
}
