package task

// TrapContext is the bit-exact layout of the page holding a process's
// trap context at the top of user address space (spec.md §6): the
// user-mode register file the trap handler restores on re-entry, plus the
// kernel-entry fields the assembly trampoline reads before the handler
// itself runs. Field order matters on real hardware, since the
// context-switch assembly indexes into it by raw offset; this hosted port
// never executes that assembly (SPEC_FULL.md §0) but keeps the layout so
// the struct documents the real contract.
type TrapContext struct {
	X           [32]uint64 // general-purpose registers x0..x31
	Sstatus     uint64
	Sepc        uint64
	KernelSatp  uint64
	KernelSp    uint64
	TrapHandler uint64
}

// NewTrapContext builds the initial trap context for a freshly constructed
// or exec'd process: sepc = entry, x2 (sp) = userSP, plus the kernel-entry
// fields needed to trampoline back in on the next trap.
func NewTrapContext(entry, userSP int, kernelSatp uint64, kernelSP int, trapHandler uint64) *TrapContext {
	tc := &TrapContext{
		Sepc:        uint64(entry),
		KernelSatp:  kernelSatp,
		KernelSp:    uint64(kernelSP),
		TrapHandler: trapHandler,
	}
	tc.X[2] = uint64(userSP)
	return tc
}

// A0 is the return-value register the dispatcher writes a syscall's result
// into (spec.md §4.4 step 4).
func (tc *TrapContext) A0() uint64     { return tc.X[10] }
func (tc *TrapContext) SetA0(v uint64) { tc.X[10] = v }

// Context is the callee-saved register set (spec's task_cx): ra, sp, and
// s0..s11, used by the real context-switch primitive. The hosted
// Processor switches tasks with goroutines and channels instead
// (SPEC_FULL.md §0), so this struct is never read by the scheduler; it
// exists for API parity with the teacher's trapframe / rCore's
// TaskContext.
type Context struct {
	Ra uint64
	Sp uint64
	S  [12]uint64
}
