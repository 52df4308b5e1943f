// Command kernel boots the single-CPU teaching kernel core: it seeds an
// in-memory filesystem with the fixed init executable, boots PID 0 from
// it, and drives the processor's run loop until the ready queue is
// exhausted (SPEC_FULL.md §0's hosting adaptation — there is no boot
// loader or trap assembly here, only the Go equivalent spec.md §1 places
// out of scope).
package main

import (
	"log"
	"os"

	"github.com/oichkatzele/rvos/config"
	"github.com/oichkatzele/rvos/fs"
	"github.com/oichkatzele/rvos/task"
)

const blocks = 8192

func main() {
	store := fs.NewBlockStore(blocks)

	initElf, ok := task.ExecutableBytes(config.InitProcPath)
	if !ok {
		log.Fatalf("kernel: no Program registered for %q", config.InitProcPath)
	}
	ino, ok := store.CreateInode(config.InitProcPath)
	if !ok {
		log.Fatal("kernel: could not create inode for init process")
	}
	if n := store.WriteAt(ino, 0, initElf); n != len(initElf) {
		log.Fatal("kernel: short write seeding init process")
	}

	k := task.NewKernel(store, blocks, os.Stdout)
	if _, err := k.Boot(); err != nil {
		log.Fatalf("kernel: boot failed: %v", err)
	}

	k.Processor.Run()
}
