// Package fs specifies the external, on-disk filesystem collaborator
// spec.md §1 treats as out of THE CORE's scope ("a single-directory,
// inode-numbered store exposing ls, find_node, create_inode, read_at,
// write_at, clear, link, unlink, calc_hard_links"), and provides one
// concrete implementation of it (BlockStore) so the kernel's filesystem
// glue (fd.OSInode, the open/link/unlink syscalls) has something real to
// run against end to end.
package fs

import "github.com/oichkatzele/rvos/defs"

// InodeID names an inode within a Store. 0 is never a valid inode id
// (spec.md §4.3: fstat only queries nlink "if ino > 0").
type InodeID uint32

// Store is the interface the core's filesystem glue consumes. It is
// intentionally small: spec.md's Non-goals exclude a directory hierarchy
// and permissions beyond readable/writable, so there is exactly one flat
// directory and no mode bits beyond what stat.ModeFile communicates.
type Store interface {
	// Ls lists every name currently bound in the directory.
	Ls() []string
	// FindNode resolves name to its inode id, if bound.
	FindNode(name string) (InodeID, bool)
	// CreateInode creates a new, empty inode bound to name. ok is false if
	// the inode cannot be created; BlockStore refuses a name that is
	// already bound.
	CreateInode(name string) (InodeID, bool)
	// ReadAt reads len(buf) bytes from ino at the given byte offset,
	// returning the number actually read (short on EOF).
	ReadAt(ino InodeID, offset int, buf []byte) int
	// WriteAt writes buf to ino at the given byte offset, growing the
	// inode on demand, and returns the number of bytes written.
	WriteAt(ino InodeID, offset int, buf []byte) int
	// Clear truncates ino to zero length.
	Clear(ino InodeID)
	// Link binds newName to the inode currently referenced by oldName.
	// Returns EFAULT if oldName does not resolve.
	Link(newName, oldName string) defs.Err_t
	// Unlink removes name from the directory. Returns EFAULT if absent.
	Unlink(name string) defs.Err_t
	// CalcHardLinks reports how many names currently resolve to ino.
	CalcHardLinks(ino InodeID) int
}
