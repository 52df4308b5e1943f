// Package sbi models the SBI console driver spec.md §1 treats as an
// external collaborator: a single poll-for-a-character primitive the real
// kernel would implement with an SBI ecall. Hosted here as an in-memory
// byte queue so Stdin's blocking-read contract (spec.md §4.3) is testable
// without a real UART.
package sbi

import "sync"

// Console is a simulated SBI console: callers push bytes in (as if typed
// at a terminal) and the kernel polls them out one at a time.
type Console struct {
	mu  sync.Mutex
	buf []byte
}

// NewConsole returns an empty simulated console.
func NewConsole() *Console { return &Console{} }

// Feed appends bytes as if they had just been typed, for tests driving the
// echo scenario in spec.md §8.
func (c *Console) Feed(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = append(c.buf, b...)
}

// GetChar polls for one character. ok is false if none is available yet —
// callers must not block here; spec.md's blocking semantics live one
// layer up, in fd.Stdin.Read, which yields and re-polls.
func (c *Console) GetChar() (byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buf) == 0 {
		return 0, false
	}
	ch := c.buf[0]
	c.buf = c.buf[1:]
	return ch, true
}
