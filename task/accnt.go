package task

import (
	"sync"
	"sync/atomic"
	"time"
)

// Accnt accumulates per-task user/system time, grounded on biscuit's
// accnt.Accnt_t (accnt/accnt.go): atomic counters sampled against
// time.Now. Processor.Run brackets every dispatch slice and feeds the
// elapsed wall time into Utadd, so Total reports actual accumulated
// runtime rather than a derived/estimated figure.
type Accnt struct {
	Userns int64
	Sysns  int64
	mu     sync.Mutex
}

// Utadd adds delta nanoseconds to the user-time counter.
func (a *Accnt) Utadd(delta int64) { atomic.AddInt64(&a.Userns, delta) }

// Systadd adds delta nanoseconds to the system-time counter.
func (a *Accnt) Systadd(delta int64) { atomic.AddInt64(&a.Sysns, delta) }

// Total returns a consistent snapshot of accumulated runtime in nanoseconds.
func (a *Accnt) Total() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return atomic.LoadInt64(&a.Userns) + atomic.LoadInt64(&a.Sysns)
}

func nowNanos() int64 { return time.Now().UnixNano() }

func nowMillis() int64 { return time.Now().UnixNano() / int64(time.Millisecond) }
