package fd

import (
	"sync"

	"github.com/oichkatzele/rvos/defs"
	"github.com/oichkatzele/rvos/fs"
	"github.com/oichkatzele/rvos/vm"
)

// Flag bits for OpenFile, bit-packed exactly as spec.md §4.3 describes:
// WRONLY (bit 0), RDWR (bit 1), CREATE (bit 9), TRUNC (bit 10).
const (
	WRONLY = 1 << 0
	RDWR   = 1 << 1
	CREATE = 1 << 9
	TRUNC  = 1 << 10
)

// readWrite derives (readable, writable) from flags per spec.md §4.3.
func readWrite(flags uint32) (bool, bool) {
	switch {
	case flags&WRONLY != 0:
		return false, true
	case flags&RDWR != 0:
		return true, true
	case flags == 0:
		// empty flag word maps to read-only, same as OpenFlags::empty()
		// in original_source/os6/src/fs/inode.rs.
		return true, false
	default:
		return true, true
	}
}

// OSInode is an on-disk-inode-backed File: it owns a cursor offset and a
// shared handle to the underlying store inode (spec.md §3, §4.3).
// The cursor is shared across every descriptor referencing the same
// OSInode — including across fork, per spec.md §9's "sharing a mutable
// cursor" note — because fd.Table.Clone in this kernel duplicates the
// *reference*, not the OSInode itself.
type OSInode struct {
	mu       sync.Mutex
	ino      fs.InodeID
	readable bool
	writable bool
	store    fs.Store
	offset   int
}

// NewOSInode wraps ino from store with the given access mode.
func NewOSInode(ino fs.InodeID, readable, writable bool, store fs.Store) *OSInode {
	return &OSInode{ino: ino, readable: readable, writable: writable, store: store}
}

func (f *OSInode) Readable() bool { return f.readable }
func (f *OSInode) Writable() bool { return f.writable }

func (f *OSInode) InodeID() (fs.InodeID, bool) { return f.ino, true }

// Read reads into buf's slices starting at the cursor, stopping at the
// first short read (EOF), and advances the cursor by the total read
// (spec.md §4.3).
func (f *OSInode) Read(buf *vm.UserBuffer) (int, defs.Err_t) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, sl := range buf.Slices {
		n := f.store.ReadAt(f.ino, f.offset, sl)
		f.offset += n
		total += n
		if n < len(sl) {
			break
		}
	}
	return total, 0
}

// Write writes buf's slices starting at the cursor. Every slice write must
// be full — the underlying store grows the inode on demand (spec.md
// §4.3's invariant) — and advances the cursor by the total written.
func (f *OSInode) Write(buf *vm.UserBuffer) (int, defs.Err_t) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, sl := range buf.Slices {
		n := f.store.WriteAt(f.ino, f.offset, sl)
		if n != len(sl) {
			panic("short write to inode")
		}
		f.offset += n
		total += n
	}
	return total, 0
}

// ReadAll drains the inode from the cursor to EOF using an internal
// 512-byte staging buffer, matching the teacher's read_all (spec.md §4.3;
// only meaningful for OSInode, used to slurp an executable image).
func (f *OSInode) ReadAll() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []byte
	var staging [512]byte
	for {
		n := f.store.ReadAt(f.ino, f.offset, staging[:])
		if n == 0 {
			break
		}
		f.offset += n
		out = append(out, staging[:n]...)
	}
	return out
}

// OpenFile implements spec.md §4.3's open_file: derive (readable,
// writable) from flags, then either create-or-truncate-and-reuse (CREATE
// set) or find-and-maybe-truncate (CREATE absent).
func OpenFile(store fs.Store, name string, flags uint32) (*OSInode, bool) {
	readable, writable := readWrite(flags)
	if flags&CREATE != 0 {
		if ino, ok := store.FindNode(name); ok {
			store.Clear(ino)
			return NewOSInode(ino, readable, writable, store), true
		}
		ino, ok := store.CreateInode(name)
		if !ok {
			return nil, false
		}
		return NewOSInode(ino, readable, writable, store), true
	}

	ino, ok := store.FindNode(name)
	if !ok {
		return nil, false
	}
	if flags&TRUNC != 0 {
		store.Clear(ino)
	}
	return NewOSInode(ino, readable, writable, store), true
}
