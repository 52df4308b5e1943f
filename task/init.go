package task

import (
	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/vm"
)

// init registers the fixed boot executable (spec.md §6 "Environment"):
// a reaper loop in the spirit of rCore-tutorial's INITPROC, simplified
// for this hosted port, which has no shell binary to fork. It waits for
// any child to become a zombie, reaps it, and exits once it has none
// left — a finite, testable stand-in for the original's "forever" loop,
// appropriate since Processor.Run itself returns once the ready queue is
// exhausted (SPEC_FULL.md §0 hosting adaptation) rather than idling for
// a next interrupt that will never come.
func init() {
	elfBytes := vm.SyntheticELF(config.USERMIN, config.PGSIZE)
	Register(config.InitProcPath, elfBytes, initReaper)
}

func initReaper(env *UserEnv) {
	for {
		switch env.Waitpid(-1, 0) {
		case -1:
			env.Exit(0)
		case -2:
			env.Yield()
		}
	}
}
