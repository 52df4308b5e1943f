package task

import "github.com/oichkatzele/rvos/config"

// Processor is the single-CPU run loop plus the context-switch primitive
// between the idle context and a task context (spec.md §2, §4.6).
// SPEC_FULL.md §0 replaces the assembly __switch routine with goroutines
// gated by channels: each TCB owns a goroutine blocked on a resume
// channel, and the run loop blocks on that TCB's done channel until it
// yields or exits. Exactly one task goroutine ever runs at a time, which
// is the property spec.md §5 actually requires ("single kernel thread of
// control per trap"); the channel handoff is simply the hosted mechanism
// by which that property is enforced instead of real register save and
// restore.
type Processor struct {
	manager *Manager
	running *TCB
}

// NewProcessor returns a processor driving the given ready queue.
func NewProcessor(m *Manager) *Processor {
	return &Processor{manager: m}
}

// Manager exposes the processor's ready queue.
func (p *Processor) Manager() *Manager { return p.manager }

// Running returns the task currently holding the CPU, or nil if idle.
func (p *Processor) Running() *TCB { return p.running }

// spawnGoroutine starts t's goroutine, parked immediately on its resume
// channel; it does not run until the processor dispatches it.
func (p *Processor) spawnGoroutine(t *TCB) {
	go func() {
		<-t.resumeCh
		defer func() {
			r := recover()
			if r != nil {
				if _, ok := r.(exitSignal); !ok {
					// a genuine bug in a Program closure; surface it rather
					// than silently dropping the task.
					t.doneCh <- struct{}{}
					panic(r)
				}
			}
			t.doneCh <- struct{}{}
		}()
		env := &UserEnv{tcb: t, proc: p}
		t.program(env)
		// a Program that returns without calling Exit behaves as exit(0).
		env.Exit(0)
	}()
}

// Submit registers t's goroutine and places it on the ready queue. Used
// for every newly constructed TCB: Boot's init process, fork's child,
// spawn's child.
func (p *Processor) Submit(t *TCB) {
	p.spawnGoroutine(t)
	t.setStatus(Ready)
	p.manager.Enqueue(t)
}

// exitSignal unwinds a Program's goroutine immediately once Exit has
// recorded the task's zombie state; it is not a real error and is
// recovered in spawnGoroutine.
type exitSignal struct{}

// Run drives the scheduler until the ready queue is exhausted (spec.md
// §4.6 run_tasks). Real hardware busy-idles forever waiting for the next
// interrupt when the queue is empty; a hosted run with no interrupt
// source simply has nothing left to do once every task has exited, so
// Run returns instead of spinning (documented hosting adaptation, see
// DESIGN.md).
func (p *Processor) Run() {
	for {
		t := p.manager.Fetch()
		if t == nil {
			return
		}
		p.running = t
		t.setStatus(Running)
		t.addPass(uint64(config.BIG_STRIDE / t.Priority()))
		t.markFirstRun()

		sliceStart := nowNanos()
		t.resumeCh <- struct{}{}
		<-t.doneCh
		t.Accnt().Utadd(nowNanos() - sliceStart)

		p.running = nil
	}
}

// yieldCurrent implements suspend_current_and_run_next (spec.md §4.6): t
// is marked Ready, reinserted into the sorted ready queue, and the
// calling goroutine blocks until the processor dispatches it again.
func (p *Processor) yieldCurrent(t *TCB) {
	t.setStatus(Ready)
	p.manager.Enqueue(t)
	t.doneCh <- struct{}{}
	<-t.resumeCh
}
