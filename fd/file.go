// Package fd implements the uniform file capability spec.md §3/§4.3
// describes — a single interface over stdin, stdout, and on-disk
// inode-backed files — plus the per-process file descriptor table.
// Grounded on biscuit's fd.Fd_t (fd/fd.go) for the descriptor-table shape
// and on original_source/os6/src/fs/{stdio,inode}.rs for File's exact
// read/write semantics, which the teacher's own Fd_t does not specify
// (biscuit's fdops.Fdops_i is a much larger POSIX surface than this
// teaching kernel's §4.3).
package fd

import (
	"github.com/oichkatzele/rvos/defs"
	"github.com/oichkatzele/rvos/fs"
	"github.com/oichkatzele/rvos/vm"
)

// File is the polymorphic capability every open descriptor holds
// (spec.md §3 "Open File"): {Stdin, Stdout, OSInode}.
type File interface {
	Readable() bool
	Writable() bool
	Read(buf *vm.UserBuffer) (int, defs.Err_t)
	Write(buf *vm.UserBuffer) (int, defs.Err_t)
	InodeID() (fs.InodeID, bool)
	ReadAll() []byte
}

// Stdin reads one byte at a time from the simulated SBI console, blocking
// (by yielding the CPU and re-polling) until a character is available
// (spec.md §4.3 "Stdin read is blocking at the character level").
type Stdin struct {
	Console interface{ GetChar() (byte, bool) }
	// Yield suspends the current task and resumes it once some other task
	// has run, matching suspend_current_and_run_next in the original
	// fs/stdio.rs. Injected rather than imported directly to avoid a
	// fd -> task import cycle, since task already imports fd for the
	// per-process descriptor table.
	Yield func()
}

func (s *Stdin) Readable() bool { return true }
func (s *Stdin) Writable() bool { return false }

func (s *Stdin) Read(buf *vm.UserBuffer) (int, defs.Err_t) {
	if buf.Len() != 1 {
		panic("stdin reads exactly one byte per call")
	}
	var ch byte
	for {
		c, ok := s.Console.GetChar()
		if ok {
			ch = c
			break
		}
		s.Yield()
	}
	buf.Slices[0][0] = ch
	return 1, 0
}

func (s *Stdin) Write(buf *vm.UserBuffer) (int, defs.Err_t) {
	panic("cannot write to stdin")
}

func (s *Stdin) InodeID() (fs.InodeID, bool) { return 0, false }
func (s *Stdin) ReadAll() []byte             { return nil }

// Stdout writes UTF-8 bytes directly to the host's standard output.
type Stdout struct {
	Write_ func(p []byte) (int, error)
}

func (s *Stdout) Readable() bool { return false }
func (s *Stdout) Writable() bool { return true }

func (s *Stdout) Read(buf *vm.UserBuffer) (int, defs.Err_t) {
	panic("cannot read from stdout")
}

func (s *Stdout) Write(buf *vm.UserBuffer) (int, defs.Err_t) {
	total := 0
	for _, sl := range buf.Slices {
		n, _ := s.Write_(sl)
		total += n
	}
	return total, 0
}

func (s *Stdout) InodeID() (fs.InodeID, bool) { return 0, false }
func (s *Stdout) ReadAll() []byte             { return nil }
