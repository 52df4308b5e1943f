package task

import "sync"

// Program is the in-process stand-in for an executable's machine code
// (SPEC_FULL.md §0 "No real RISC-V execution"): a Go closure invoked
// through a *UserEnv, which issues syscalls as ordinary method calls
// instead of `ecall` traps. Registered by path in the same catalog role
// ch6b_initproc and its siblings play against the original kernel image.
type Program func(env *UserEnv)

type binary struct {
	elf  []byte
	prog Program
}

var (
	registryMu sync.Mutex
	registry   = map[string]binary{}
)

// Register binds name to an ELF image and the Program that runs when it
// is exec'd or spawned: real ELF bytes for from_elf's layout/permission
// parsing, plus the closure that actually executes at the entry point
// those bytes describe.
func Register(name string, elfBytes []byte, prog Program) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = binary{elf: elfBytes, prog: prog}
}

func lookup(name string) (binary, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	b, ok := registry[name]
	return b, ok
}

// ExecutableBytes returns the registered ELF image for name, for boot
// tooling that needs to seed a fresh fs.Store with the binaries it will
// later open_file/exec/spawn by name (cmd/kernel; mkfs has no RISC-V
// toolchain available to produce these bytes itself).
func ExecutableBytes(name string) ([]byte, bool) {
	b, ok := lookup(name)
	return b.elf, ok
}
