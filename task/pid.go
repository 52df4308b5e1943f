package task

import "sync"

// pidPool allocates process identifiers from a free list, kept as a
// stack of freed PIDs that allocPid pops before handing out a new one,
// the same free-list idea mem.FrameAllocator applies to physical frames
// (mem/frame.go). PID 0 is
// reserved for the init process (spec.md §3) and is never handed out by
// allocPid; Boot assigns it directly.
type pidPool struct {
	mu   sync.Mutex
	next int
	free []int
}

var pids = &pidPool{next: 1}

func allocPid() int {
	pids.mu.Lock()
	defer pids.mu.Unlock()
	if n := len(pids.free); n > 0 {
		p := pids.free[n-1]
		pids.free = pids.free[:n-1]
		return p
	}
	p := pids.next
	pids.next++
	return p
}

func freePid(p int) {
	if p == 0 {
		return
	}
	pids.mu.Lock()
	pids.free = append(pids.free, p)
	pids.mu.Unlock()
}
