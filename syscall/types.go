package syscall

import "github.com/oichkatzele/rvos/config"

// TimeVal is get_time's output structure (spec.md §6): seconds and
// microseconds from a microsecond monotonic clock.
type TimeVal struct {
	Sec  uint64
	Usec uint64
}

// Bytes returns TimeVal's little-endian on-the-wire encoding.
func (tv TimeVal) Bytes() []byte {
	b := make([]byte, 16)
	putU64(b[0:8], tv.Sec)
	putU64(b[8:16], tv.Usec)
	return b
}

// TaskInfo is task_info's output structure (spec.md §6): the calling
// task's status, its per-syscall-number counters, and milliseconds
// elapsed since it first ran.
type TaskInfo struct {
	Status       int32
	SyscallTimes [config.MaxSyscallNum]uint32
	Time         uint64
}

// Bytes returns TaskInfo's little-endian on-the-wire encoding: a 4-byte
// status (padded to 8), the counter array, then the elapsed-ms field.
func (ti TaskInfo) Bytes() []byte {
	b := make([]byte, 8+4*config.MaxSyscallNum+8)
	putU64(b[0:8], uint64(uint32(ti.Status)))
	for i, c := range ti.SyscallTimes {
		off := 8 + i*4
		putU32(b[off:off+4], c)
	}
	putU64(b[len(b)-8:], ti.Time)
	return b
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func putU32(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
