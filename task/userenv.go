package task

import (
	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/defs"
	"github.com/oichkatzele/rvos/fd"
	"github.com/oichkatzele/rvos/internal/kutil"
	"github.com/oichkatzele/rvos/stat"
	"github.com/oichkatzele/rvos/syscall"
	"github.com/oichkatzele/rvos/vm"
)

// UserEnv is the in-process analogue of a trap into the dispatcher
// (SPEC_FULL.md §0): a Program closure issues syscalls as ordinary
// method calls against it instead of an `ecall` + a7/a0..a6 register
// convention. Each method here performs spec.md §4.4's four-step
// discipline: count the call by syscall number, translate any user
// pointer argument via vm against the task's own token, perform the
// operation, and return a result a real trap handler would stash in a0.
//
// "User pointers" in this hosted port are plain ints the caller chooses
// to treat as addresses into its own MemorySet (built by the same
// insert_framed_area the mmap syscall itself drives) — there is no raw
// host memory access involved, only vm's translation path, so the
// cross-address-space discipline spec.md §9 requires is exercised for
// real even though there is no MMU underneath it.
type UserEnv struct {
	tcb  *TCB
	proc *Processor
}

// Pid returns the owning task's process id.
func (e *UserEnv) Pid() int { return e.tcb.Pid }

func (e *UserEnv) count(num int) { e.tcb.IncSyscall(num) }

// Write implements the write syscall (spec.md §4.4).
func (e *UserEnv) Write(fd_ int, userPtr, length int) int {
	e.count(syscall.SYS_WRITE)
	f, ok := e.tcb.FdGet(fd_)
	if !ok || !f.Writable() {
		return -1
	}
	buf, err := vm.NewUserBuffer(e.tcb.Token(), userPtr, length, false)
	if err != 0 {
		return -1
	}
	// the TCB lock (held only inside FdGet, already released) is never
	// held across this call: File.Write may yield (spec.md's critical
	// ordering rule, carried from syscall/fs.rs's sys_write).
	n, werr := f.Write(buf)
	if werr != 0 {
		return -1
	}
	return n
}

// Read implements the read syscall.
func (e *UserEnv) Read(fd_ int, userPtr, length int) int {
	e.count(syscall.SYS_READ)
	f, ok := e.tcb.FdGet(fd_)
	if !ok || !f.Readable() {
		return -1
	}
	buf, err := vm.NewUserBuffer(e.tcb.Token(), userPtr, length, true)
	if err != 0 {
		return -1
	}
	n, rerr := f.Read(buf)
	if rerr != 0 {
		return -1
	}
	return n
}

// Open implements the open syscall: translate the path, call open_file,
// allocate the lowest free fd.
func (e *UserEnv) Open(pathPtr int, flags uint32) int {
	e.count(syscall.SYS_OPEN)
	name, err := vm.TranslatedStr(e.tcb.Token(), pathPtr)
	if err != 0 {
		return -1
	}
	in, ok := fd.OpenFile(e.tcb.Kernel().Store, name, flags)
	if !ok {
		return -1
	}
	return e.tcb.FdAlloc(in)
}

// Close implements the close syscall.
func (e *UserEnv) Close(fd_ int) int {
	e.count(syscall.SYS_CLOSE)
	if e.tcb.FdClose(fd_) != 0 {
		return -1
	}
	return 0
}

// Fstat implements the fstat syscall (spec.md §4.3/§4.4): fills
// {ino, mode=FILE, nlink}.
func (e *UserEnv) Fstat(fd_ int, statPtr int) int {
	e.count(syscall.SYS_FSTAT)
	f, ok := e.tcb.FdGet(fd_)
	if !ok {
		return -1
	}
	ino, hasIno := f.InodeID()
	st := stat.Stat{Mode: stat.ModeFile}
	if hasIno {
		st.Ino = uint64(ino)
		if ino > 0 {
			st.Nlink = uint32(e.tcb.Kernel().Store.CalcHardLinks(ino))
		}
	}
	dst, err := vm.TranslatedRefBytes(e.tcb.Token(), statPtr, stat.Size)
	if err != 0 {
		return -1
	}
	copy(dst, st.Bytes())
	return 0
}

// Linkat implements the linkat syscall: equal names are rejected before
// delegating to the store.
func (e *UserEnv) Linkat(oldPtr, newPtr int) int {
	e.count(syscall.SYS_LINKAT)
	oldName, err := vm.TranslatedStr(e.tcb.Token(), oldPtr)
	if err != 0 {
		return -1
	}
	newName, err2 := vm.TranslatedStr(e.tcb.Token(), newPtr)
	if err2 != 0 {
		return -1
	}
	if oldName == newName {
		return -1
	}
	if e.tcb.Kernel().Store.Link(newName, oldName) != 0 {
		return -1
	}
	return 0
}

// Unlinkat implements the unlinkat syscall.
func (e *UserEnv) Unlinkat(namePtr int) int {
	e.count(syscall.SYS_UNLINKAT)
	name, err := vm.TranslatedStr(e.tcb.Token(), namePtr)
	if err != 0 {
		return -1
	}
	if e.tcb.Kernel().Store.Unlink(name) != 0 {
		return -1
	}
	return 0
}

// Yield implements the yield syscall: suspend_current_and_run_next
// (spec.md §4.6).
func (e *UserEnv) Yield() int {
	e.count(syscall.SYS_YIELD)
	e.proc.yieldCurrent(e.tcb)
	return 0
}

// Exit implements the exit syscall (spec.md §4.5). It never returns to
// the caller: the Program's goroutine is unwound immediately via
// exitSignal, matching "never returns" in the syscall table (§4.4).
func (e *UserEnv) Exit(code int32) {
	e.count(syscall.SYS_EXIT)
	e.tcb.Exit(code)
	panic(exitSignal{})
}

// GetTime implements get_time: writes {sec, usec} from the host's
// monotonic clock to the user pointer.
func (e *UserEnv) GetTime(tvPtr int) int {
	e.count(syscall.SYS_GET_TIME)
	us := uint64(nowNanos() / 1000)
	tv := syscall.TimeVal{Sec: us / 1_000_000, Usec: us % 1_000_000}
	dst, err := vm.TranslatedRefBytes(e.tcb.Token(), tvPtr, 16)
	if err != 0 {
		return -1
	}
	copy(dst, tv.Bytes())
	return 0
}

// TaskInfo implements task_info: writes {status, syscall_times, elapsed
// ms} to the user pointer.
func (e *UserEnv) TaskInfo(tiPtr int) int {
	e.count(syscall.SYS_TASK_INFO)
	ti := syscall.TaskInfo{
		Status:       int32(e.tcb.Status()),
		SyscallTimes: e.tcb.SyscallTimes(),
		Time:         uint64(e.tcb.ElapsedMs()),
	}
	width := 8 + 4*config.MaxSyscallNum + 8
	dst, err := vm.TranslatedRefBytes(e.tcb.Token(), tiPtr, width)
	if err != 0 {
		return -1
	}
	copy(dst, ti.Bytes())
	return 0
}

// Mmap implements the mmap syscall (spec.md §4.4's mmap policy): port
// bits decoded independently (R=bit0, W=bit1, X=bit2), start page
// aligned, len rounded up, reject on any already-mapped VPN in range.
func (e *UserEnv) Mmap(start, length, port int) int {
	e.count(syscall.SYS_MMAP)
	r, w, x, ok := syscall.DecodePort(port)
	if !ok {
		return -1
	}
	if start%config.PGSIZE != 0 {
		return -1
	}
	perm := vm.PERM_U
	if r {
		perm |= vm.PERM_R
	}
	if w {
		perm |= vm.PERM_W
	}
	if x {
		perm |= vm.PERM_X
	}
	end := start + length
	if err := e.tcb.MemorySet().InsertFramedArea(start, end, perm); err != 0 {
		return -1
	}
	return 0
}

// Munmap implements the munmap syscall: every VPN in range must already
// be validly mapped, or the call fails without partial effect.
func (e *UserEnv) Munmap(start, length int) int {
	e.count(syscall.SYS_MUNMAP)
	if start%config.PGSIZE != 0 {
		return -1
	}
	ms := e.tcb.MemorySet()
	startVPN := vm.PageOf(start)
	endVPN := vm.PageOf(kutil.Roundup(start+length, config.PGSIZE))
	for vpn := startVPN; vpn < endVPN; vpn++ {
		if !ms.PageTable().Valid(vpn) {
			return -1
		}
	}
	for vpn := startVPN; vpn < endVPN; vpn++ {
		ms.Unmap(vpn)
	}
	return 0
}

// GetPid implements get_pid.
func (e *UserEnv) GetPid() int {
	e.count(syscall.SYS_GETPID)
	return e.tcb.Pid
}

// Fork implements the fork syscall (spec.md §4.5): the child runs
// childFn in its own goroutine against its own UserEnv, which is this
// hosting model's substitute for "child sees fork()==0" (see
// DESIGN.md and TCB.Fork's doc comment — a Go closure cannot
// resume a parent's call stack mid-function the way a real fork()
// continues past the syscall in both processes). Returns the child's
// pid to the parent.
func (e *UserEnv) Fork(childFn Program) int {
	e.count(syscall.SYS_FORK)
	child := e.tcb.Fork(childFn)
	e.proc.Submit(child)
	return child.Pid
}

// Exec implements the exec syscall: on success it never returns to the
// caller — the new Program runs to completion (ending in Exit) within
// the same goroutine, which unwinds past this call. On failure
// (executable not found / bad ELF) it returns -1 normally, matching
// POSIX exec()'s only-returns-on-error contract.
func (e *UserEnv) Exec(pathPtr int) int {
	e.count(syscall.SYS_EXEC)
	name, err := vm.TranslatedStr(e.tcb.Token(), pathPtr)
	if err != 0 {
		return -1
	}
	b, ok := lookup(name)
	if !ok {
		return -1
	}
	if _, _, _, err := e.tcb.ExecInPlace(b.elf); err != nil {
		return -1
	}
	b.prog(e)
	e.Exit(0)
	panic("unreachable")
}

// Spawn implements the spawn syscall: fork+exec fused, the child's
// memory set built directly from the named executable's ELF image
// (spec.md §4.5 "spawn"; SPEC_FULL.md §5).
func (e *UserEnv) Spawn(pathPtr int) int {
	e.count(syscall.SYS_SPAWN)
	name, err := vm.TranslatedStr(e.tcb.Token(), pathPtr)
	if err != 0 {
		return -1
	}
	b, ok := lookup(name)
	if !ok {
		return -1
	}
	child, cerr := e.tcb.Spawn(b.elf, b.prog)
	if cerr != nil {
		return -1
	}
	e.proc.Submit(child)
	return child.Pid
}

// Waitpid implements the waitpid syscall (spec.md §4.5 "wait"): returns
// the child's pid and writes its exit code, or -1/-2 per spec.md §7.
func (e *UserEnv) Waitpid(pid int, codePtr int) int {
	e.count(syscall.SYS_WAITPID)
	childPid, code, werr := e.tcb.Waitpid(pid)
	if werr == defs.EFAULT {
		return -1
	}
	if werr == defs.ENOTRDY {
		return -2
	}
	if dst, derr := vm.TranslatedRefBytes(e.tcb.Token(), codePtr, 4); derr == 0 {
		dst[0] = byte(code)
		dst[1] = byte(code >> 8)
		dst[2] = byte(code >> 16)
		dst[3] = byte(code >> 24)
	}
	return childPid
}

// SetPriority implements set_priority: p <= 1 rejected, else set and
// echo p back.
func (e *UserEnv) SetPriority(p int) int {
	e.count(syscall.SYS_SET_PRIORITY)
	if e.tcb.SetPriority(p) != 0 {
		return -1
	}
	return p
}
