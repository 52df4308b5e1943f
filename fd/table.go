package fd

import "github.com/oichkatzele/rvos/defs"

// Table is the per-task file descriptor table (spec.md §3's fd_table):
// a sparse, ordered list of optional File capabilities. Slot 0/1/2 start
// out bound to stdin/stdout/stdout, matching the teacher's own
// new_fd_table seeding (fd/fd.go's reserved low descriptors) and
// original_source/os6/src/task/mod.rs's TaskControlBlock::new.
type Table struct {
	slots []File
}

// NewTable returns a table with fds 0, 1, 2 pre-bound to stdin/stdout.
func NewTable(stdin, stdout File) *Table {
	return &Table{slots: []File{stdin, stdout, stdout}}
}

// Get returns the File at fd, if any descriptor is open there.
func (t *Table) Get(fd int) (File, bool) {
	if fd < 0 || fd >= len(t.slots) || t.slots[fd] == nil {
		return nil, false
	}
	return t.slots[fd], true
}

// Alloc installs f at the lowest unused descriptor and returns it.
func (t *Table) Alloc(f File) int {
	for i, s := range t.slots {
		if s == nil {
			t.slots[i] = f
			return i
		}
	}
	t.slots = append(t.slots, f)
	return len(t.slots) - 1
}

// Close clears fd's slot. Returns EFAULT if fd was not open.
func (t *Table) Close(fd int) defs.Err_t {
	if fd < 0 || fd >= len(t.slots) || t.slots[fd] == nil {
		return defs.EFAULT
	}
	t.slots[fd] = nil
	return 0
}

// Clone duplicates the table's slot layout for fork (spec.md §4.5's
// "fd_table is copied" rule) — every slot shares the same underlying File
// value, so cursors on OSInode-backed files are shared post-fork exactly
// as biscuit's own Fd_t reference-counting implies.
func (t *Table) Clone() *Table {
	cp := make([]File, len(t.slots))
	copy(cp, t.slots)
	return &Table{slots: cp}
}

// Len reports the current slot count (including closed/nil slots),
// mostly useful for tests asserting table growth behavior.
func (t *Table) Len() int { return len(t.slots) }
