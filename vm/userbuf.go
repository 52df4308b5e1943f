package vm

import (
	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/defs"
)

// UserBuffer is a sequence of kernel-reachable byte slices that together
// represent a contiguous user-virtual region (spec.md §3 "User Buffer"),
// produced by translating a (token, user_ptr, len) triple across a foreign
// page table. Mirrors biscuit's vm.Userbuf_t / rCore's UserBuffer.
//
// The returned slices are valid only while the source memory set is alive
// and unmodified; callers must discard them before any operation that
// could remap the target address space (spec.md §4.1 guarantee, §9 "Cross-
// address-space pointers").
type UserBuffer struct {
	Slices [][]byte
}

// NewUserBuffer translates [userPtr, userPtr+length) in the address space
// identified by tok and wraps the resulting slices as a UserBuffer. wantWrite
// selects whether the mapping must be writable (for reads into user memory)
// or merely readable (for writes out of user memory).
func NewUserBuffer(tok Token, userPtr, length int, wantWrite bool) (*UserBuffer, defs.Err_t) {
	slices, err := TranslatedByteBuffer(tok, userPtr, length, wantWrite)
	if err != 0 {
		return nil, err
	}
	return &UserBuffer{Slices: slices}, 0
}

// Len returns the total number of bytes covered by the buffer.
func (u *UserBuffer) Len() int {
	n := 0
	for _, s := range u.Slices {
		n += len(s)
	}
	return n
}

// pagePerm checks that perm allows the requested access; used by the
// translation helpers below so a caller cannot read/write through a
// mapping that forbids it.
func pagePerm(pte PTE, wantWrite bool) defs.Err_t {
	if !pte.Valid {
		return defs.EFAULT
	}
	if wantWrite && pte.Perm&PERM_W == 0 {
		return defs.EFAULT
	}
	if !wantWrite && pte.Perm&PERM_R == 0 {
		return defs.EFAULT
	}
	return 0
}

// TranslatedByteBuffer walks the page table identified by tok and collects,
// in address order, kernel-reachable mutable slices covering
// [userPtr, userPtr+length). Splits exactly on page boundaries, as
// spec.md §4.1 requires.
func TranslatedByteBuffer(tok Token, userPtr, length int, wantWrite bool) ([][]byte, defs.Err_t) {
	if length < 0 {
		return nil, defs.EINVAL
	}
	pt, ok := PageTableFor(tok)
	if !ok {
		return nil, defs.EFAULT
	}
	var out [][]byte
	remaining := length
	va := userPtr
	for remaining > 0 {
		vpn := PageOf(va)
		pte, ok := pt.Translate(vpn)
		if !ok {
			return nil, defs.EFAULT
		}
		if err := pagePerm(pte, wantWrite); err != 0 {
			return nil, err
		}
		pageStart := int(vpn) << config.PGSHIFT
		off := va - pageStart
		avail := config.PGSIZE - off
		take := avail
		if take > remaining {
			take = remaining
		}
		page := pt.Frames().Page(pte.PPN)
		out = append(out, page[off:off+take])
		va += take
		remaining -= take
	}
	return out, 0
}

// TranslatedStr reads a NUL-terminated string from user space starting at
// userPtr, matching spec.md §4.1's translated_str.
func TranslatedStr(tok Token, userPtr int) (string, defs.Err_t) {
	pt, ok := PageTableFor(tok)
	if !ok {
		return "", defs.EFAULT
	}
	var out []byte
	va := userPtr
	for {
		vpn := PageOf(va)
		pte, ok := pt.Translate(vpn)
		if !ok {
			return "", defs.EFAULT
		}
		if err := pagePerm(pte, false); err != 0 {
			return "", err
		}
		pageStart := int(vpn) << config.PGSHIFT
		off := va - pageStart
		page := pt.Frames().Page(pte.PPN)
		for i := off; i < config.PGSIZE; i++ {
			if page[i] == 0 {
				return string(out), 0
			}
			out = append(out, page[i])
		}
		va = pageStart + config.PGSIZE
	}
}

// TranslatedRefBytes reads the PTE for the page containing userPtr and, if
// mapped, returns the kernel-reachable slice covering the requested byte
// width starting at that offset — the same contract as
// translated_refmut<T>, specialized to raw bytes so callers can reinterpret
// them as TimeVal/TaskInfo/Stat as needed.
func TranslatedRefBytes(tok Token, userPtr, width int) ([]byte, defs.Err_t) {
	pt, ok := PageTableFor(tok)
	if !ok {
		return nil, defs.EFAULT
	}
	vpn := PageOf(userPtr)
	pte, ok := pt.Translate(vpn)
	if !ok {
		return nil, defs.EFAULT
	}
	if err := pagePerm(pte, true); err != 0 {
		return nil, err
	}
	pageStart := int(vpn) << config.PGSHIFT
	off := userPtr - pageStart
	if off+width > config.PGSIZE {
		// spec.md's translated_refmut assumes the referenced type does not
		// straddle a page boundary, as the teacher's single-PTE lookup does.
		return nil, defs.EFAULT
	}
	page := pt.Frames().Page(pte.PPN)
	return page[off : off+width], 0
}
