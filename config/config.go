// Package config gathers the kernel's compile-time tunables in one place,
// the way the teacher scatters them near the packages that own them but
// groups the ones that are genuinely system-wide (page size, stride
// constant, syscall table size) for easy cross-reference.
package config

const (
	// PGSHIFT is the base-2 exponent of the page size.
	PGSHIFT = 12
	// PGSIZE is the size of a single page in bytes.
	PGSIZE = 1 << PGSHIFT
	// PGOFFSET masks offsets within a page.
	PGOFFSET = PGSIZE - 1

	// USERMIN is the lowest virtual address user mappings may occupy.
	USERMIN = PGSIZE

	// BIG_STRIDE is the stride scheduler's per-dispatch numerator: a task's
	// pass advances by BIG_STRIDE/priority each time it is scheduled.
	BIG_STRIDE = 0x1000_0000

	// DefaultPriority is the priority newly constructed tasks start with.
	DefaultPriority = 16

	// MaxSyscallNum bounds the per-task syscall counter array.
	MaxSyscallNum = 512

	// InitProcPath is the fixed filename the kernel loads as PID 0 at boot
	// (spec.md §6 "Environment").
	InitProcPath = "ch6b_initproc"
)
