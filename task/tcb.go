package task

import (
	"sync"

	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/defs"
	"github.com/oichkatzele/rvos/fd"
	"github.com/oichkatzele/rvos/vm"
)

// Status is a TCB's lifecycle state (spec.md §3).
type Status int

const (
	Ready Status = iota
	Running
	Zombie
)

// TCB is one process's task control block (spec.md §3): address space,
// fd table, scheduling state, parent/child links, and accounting.
// Grounded on original_source/os6/src/task/mod.rs's TaskControlBlock,
// with the mutable-borrow discipline the Rust original enforces at
// compile time replaced by an explicit mutex (the only synchronization
// primitive available in Go), and context-switch fields narrowed to what
// SPEC_FULL.md §0's goroutine-based Processor actually needs.
type TCB struct {
	mu sync.Mutex

	Pid      int
	status   Status
	ms       *vm.MemorySet
	fdTable  *fd.Table
	baseSize int
	userSP   int
	entry    int

	parent   *TCB // weak back-reference (spec.md §9); Go's tracing GC
	children []*TCB

	exitCode int32

	syscallTimes [config.MaxSyscallNum]uint32
	firstRunMs   int64 // 0 until first dispatch
	priority     int
	pass         uint64

	accnt *Accnt

	k *Kernel

	program  Program
	resumeCh chan struct{}
	doneCh   chan struct{}
}

// newTCB constructs a TCB from a parsed ELF image, wiring trap-context
// derived fields and a fresh fd table seeded with stdin/stdout/stdout
// (spec.md §4.5 "Construction"). Callers supply the PID directly: Boot
// passes 0, Spawn passes a freshly allocated one. Fork does not use
// newTCB; it builds the child from the parent's cloned state.
func newTCB(pid int, elfData []byte, prog Program, k *Kernel, parent *TCB) (*TCB, error) {
	img, err := vm.FromELF(elfData, k.Frame)
	if err != nil {
		return nil, err
	}
	t := &TCB{
		Pid:      pid,
		status:   Ready,
		ms:       img.MemorySet,
		baseSize: img.BaseSize,
		userSP:   img.UserSP,
		entry:    img.Entry,
		parent:   parent,
		priority: config.DefaultPriority,
		accnt:    &Accnt{},
		k:        k,
		program:  prog,
		resumeCh: make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	t.fdTable = newStdFdTable(t, k)
	return t, nil
}

func newStdFdTable(t *TCB, k *Kernel) *fd.Table {
	stdin := &fd.Stdin{Console: k.Console, Yield: func() { k.Processor.yieldCurrent(t) }}
	stdout := &fd.Stdout{Write_: k.Stdout.Write}
	return fd.NewTable(stdin, stdout)
}

// --- accessors used by Manager/Processor; these take the TCB's own lock
// rather than relying on the single-task-at-a-time scheduling guarantee,
// since tests may legitimately inspect a task's state while it is parked
// mid-syscall on another goroutine.

func (t *TCB) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *TCB) setStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

func (t *TCB) Pass() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pass
}

func (t *TCB) addPass(delta uint64) {
	t.mu.Lock()
	t.pass += delta
	t.mu.Unlock()
}

func (t *TCB) Priority() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.priority
}

// SetPriority implements the set_priority syscall's validation (spec.md
// §4.4): p <= 1 is rejected.
func (t *TCB) SetPriority(p int) defs.Err_t {
	if p <= 1 {
		return defs.EFAULT
	}
	t.mu.Lock()
	t.priority = p
	t.mu.Unlock()
	return 0
}

func (t *TCB) markFirstRun() {
	t.mu.Lock()
	if t.firstRunMs == 0 {
		t.firstRunMs = nowMillis()
	}
	t.mu.Unlock()
}

// ElapsedMs reports milliseconds since this task's first dispatch, 0 if
// it has never run (spec.md §6 TaskInfo.time).
func (t *TCB) ElapsedMs() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.firstRunMs == 0 {
		return 0
	}
	return nowMillis() - t.firstRunMs
}

// IncSyscall bumps the counter for syscall number n (spec.md §4.4 step 1).
func (t *TCB) IncSyscall(n int) {
	t.mu.Lock()
	t.syscallTimes[n]++
	t.mu.Unlock()
}

// SyscallTimes returns a copy of the per-syscall counter array (spec.md
// §6 TaskInfo.syscall_times).
func (t *TCB) SyscallTimes() [config.MaxSyscallNum]uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.syscallTimes
}

// Token returns this task's page-table token, for translating its user
// pointers (spec.md §4.1).
func (t *TCB) Token() vm.Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ms.Token()
}

// MemorySet exposes the owning address space, e.g. for mmap/munmap.
func (t *TCB) MemorySet() *vm.MemorySet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ms
}

// FdGet/FdAlloc/FdClose expose the fd table without leaking the TCB lock
// across a call that may yield (the critical ordering rule in spec.md
// §4.4 and §5): callers take only the fd.Table's own internal state, not
// t.mu, while performing file I/O.
func (t *TCB) FdGet(n int) (fd.File, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fdTable.Get(n)
}

func (t *TCB) FdAlloc(f fd.File) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fdTable.Alloc(f)
}

func (t *TCB) FdClose(n int) defs.Err_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fdTable.Close(n)
}

// Accnt exposes the task's accounting record.
func (t *TCB) Accnt() *Accnt { return t.accnt }

// Kernel exposes the owning Kernel singleton bundle.
func (t *TCB) Kernel() *Kernel { return t.k }

// Fork clones ms, fd table, and priority into a brand-new TCB with a
// fresh PID, per spec.md §4.5 "fork". The
// child's trap-context return-value register would be zeroed on real
// hardware so the child observes fork()==0; in this hosting model the
// child instead runs the explicit childFn continuation UserEnv.Fork
// passes in, so no return-value override is needed (see UserEnv.Fork's
// doc comment for the adaptation this implies).
func (t *TCB) Fork(childFn Program) *TCB {
	t.mu.Lock()
	parentMS := t.ms
	parentFd := t.fdTable
	priority := t.priority
	baseSize := t.baseSize
	userSP := t.userSP
	entry := t.entry
	t.mu.Unlock()

	childPid := allocPid()
	childMS := vm.FromExisted(parentMS, t.k.Frame)
	child := &TCB{
		Pid:      childPid,
		status:   Ready,
		ms:       childMS,
		baseSize: baseSize,
		userSP:   userSP,
		entry:    entry,
		parent:   t,
		priority: priority,
		accnt:    &Accnt{},
		k:        t.k,
		program:  childFn,
		resumeCh: make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	child.fdTable = parentFd.Clone()

	t.mu.Lock()
	t.children = append(t.children, child)
	t.mu.Unlock()
	return child
}

// Spawn builds the child's memory set directly from a fresh ELF image
// (no wasted fork-copy), fusing fork+exec per spec.md §4.5 "spawn".
func (t *TCB) Spawn(elfData []byte, prog Program) (*TCB, error) {
	childPid := allocPid()
	child, err := newTCB(childPid, elfData, prog, t.k, t)
	if err != nil {
		freePid(childPid)
		return nil, err
	}
	t.mu.Lock()
	t.children = append(t.children, child)
	t.mu.Unlock()
	return child, nil
}

// ExecInPlace replaces this TCB's memory set and trap-context-derived
// fields with a freshly parsed ELF image, preserving pid, parent,
// children, and fd table (spec.md §4.5 "exec").
func (t *TCB) ExecInPlace(elfData []byte) (*vm.MemorySet, int, int, error) {
	img, err := vm.FromELF(elfData, t.k.Frame)
	if err != nil {
		return nil, 0, 0, err
	}
	t.mu.Lock()
	t.ms = img.MemorySet
	t.baseSize = img.BaseSize
	t.userSP = img.UserSP
	t.entry = img.Entry
	t.mu.Unlock()
	return img.MemorySet, img.UserSP, img.Entry, nil
}

// Exit implements spec.md §4.5 "exit": mark Zombie, store the exit code,
// reparent every child to the init process, release framed user memory,
// and drop this task's own children collection.
func (t *TCB) Exit(code int32) {
	t.mu.Lock()
	t.status = Zombie
	t.exitCode = code
	kids := t.children
	t.children = nil
	initProc := t.k.InitProc
	t.mu.Unlock()

	if initProc != nil && initProc != t {
		initProc.mu.Lock()
		for _, c := range kids {
			c.mu.Lock()
			c.parent = initProc
			c.mu.Unlock()
			initProc.children = append(initProc.children, c)
		}
		initProc.mu.Unlock()
	}

	t.ms.RecycleDataPages()
}

// Waitpid implements spec.md §4.5 "waitpid": pid == -1 matches any child;
// otherwise matches by exact pid equality.
func (t *TCB) Waitpid(pid int) (int, int32, defs.Err_t) {
	t.mu.Lock()
	defer t.mu.Unlock()

	matched := false
	for i, c := range t.children {
		if pid != -1 && c.Pid != pid {
			continue
		}
		matched = true
		if c.Status() != Zombie {
			continue
		}
		t.children = append(t.children[:i:i], t.children[i+1:]...)
		c.mu.Lock()
		exitCode := c.exitCode
		childPid := c.Pid
		c.mu.Unlock()
		freePid(childPid)
		return childPid, exitCode, 0
	}
	if !matched {
		return 0, 0, defs.EFAULT
	}
	return 0, 0, defs.ENOTRDY
}
