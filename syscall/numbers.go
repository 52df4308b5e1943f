// Package syscall holds the stateless pieces of the system-call layer
// (spec.md §4.4): the syscall number table, the TimeVal/TaskInfo wire
// structures, and DecodePort's mmap permission decoding. The calls
// themselves are methods on task.UserEnv, each of which counts the call,
// translates any user-pointer arguments across the caller's page table,
// performs the operation, and returns the result.
//
// Numbers match the original rCore-tutorial syscall ID table this kernel
// is ported from, not Linux's, since nothing here runs under a real
// Linux ABI.
package syscall

const (
	SYS_LINKAT       = 37
	SYS_UNLINKAT     = 35
	SYS_OPEN         = 56
	SYS_CLOSE        = 57
	SYS_READ         = 63
	SYS_WRITE        = 64
	SYS_FSTAT        = 80
	SYS_EXIT         = 93
	SYS_YIELD        = 124
	SYS_SET_PRIORITY = 140
	SYS_GET_TIME     = 169
	SYS_GETPID       = 172
	SYS_MUNMAP       = 215
	SYS_FORK         = 220
	SYS_EXEC         = 221
	SYS_MMAP         = 222
	SYS_WAITPID      = 260
	SYS_SPAWN        = 400
	SYS_TASK_INFO    = 410
)
