package task

import (
	"fmt"
	"io"

	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/fs"
	"github.com/oichkatzele/rvos/mem"
	"github.com/oichkatzele/rvos/sbi"
)

// Kernel bundles the process-wide singletons spec.md §5/§9 describes —
// the processor, the task manager, the root inode (here: an fs.Store),
// the frame allocator, and the init process — behind one value a test or
// cmd/kernel boots once. Real Biscuit/rCore guard each of these
// separately behind a single-CPU "exclusive access" cell (§5); this
// hosted port's non-preemptive goroutine scheduling (only one task
// goroutine ever runs at a time, by construction of Processor.Run) makes
// that cell unnecessary for the fields gathered here, each of which is
// otherwise already synchronized internally (Manager, FrameAllocator).
type Kernel struct {
	Frame     *mem.FrameAllocator
	Console   *sbi.Console
	Store     fs.Store
	Manager   *Manager
	Processor *Processor
	Stdout    io.Writer

	InitProc *TCB
}

// NewKernel wires up a fresh set of singletons over the given store and
// frame pool, with stdout directed at w (tests pass a bytes.Buffer; a
// real boot passes os.Stdout).
func NewKernel(store fs.Store, frames int, w io.Writer) *Kernel {
	mgr := NewManager()
	return &Kernel{
		Frame:   mem.NewFrameAllocator(frames),
		Console: sbi.NewConsole(),
		Store:   store,
		Manager: mgr,
		Processor: NewProcessor(mgr),
		Stdout:  w,
	}
}

// Boot loads config.InitProcPath from the kernel's store and installs it
// as PID 0 (spec.md §6 "Environment"; original_source/os6/src/task/mod.rs
// INITPROC). PID 0 is never handed out by allocPid and is reparented to
// at every other process's exit (§3).
func (k *Kernel) Boot() (*TCB, error) {
	data, ok := readExecutable(k.Store, config.InitProcPath)
	if !ok {
		return nil, fmt.Errorf("rvos: boot executable %q not found in store", config.InitProcPath)
	}
	b, ok := lookup(config.InitProcPath)
	if !ok {
		return nil, fmt.Errorf("rvos: no Program registered for %q", config.InitProcPath)
	}
	t, err := newTCB(0, data, b.prog, k, nil)
	if err != nil {
		return nil, err
	}
	k.InitProc = t
	k.Processor.Submit(t)
	return t, nil
}

// readExecutable slurps name's bytes from store via a plain open/read,
// the same path open_file + read_all would take for any other
// executable (kept free-standing here since Boot runs before any TCB,
// hence any fd table, exists).
func readExecutable(store fs.Store, name string) ([]byte, bool) {
	ino, ok := store.FindNode(name)
	if !ok {
		return nil, false
	}
	var out []byte
	var staging [512]byte
	offset := 0
	for {
		n := store.ReadAt(ino, offset, staging[:])
		if n == 0 {
			break
		}
		offset += n
		out = append(out, staging[:n]...)
	}
	return out, true
}
