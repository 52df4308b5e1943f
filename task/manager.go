package task

import "sync"

// Manager is the ready queue, kept sorted by ascending pass (spec.md
// §4.6): insertion is a stable lower-bound search so tasks with equal
// pass values keep their relative insertion order, matching
// original_source/os6/src/task/manager.rs's TaskManager::add.
type Manager struct {
	mu    sync.Mutex
	ready []*TCB
}

// NewManager returns an empty ready queue.
func NewManager() *Manager { return &Manager{} }

// Enqueue inserts t at its stable lower-bound position by pass.
func (m *Manager) Enqueue(t *TCB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := t.Pass()
	lo, hi := 0, len(m.ready)
	for lo < hi {
		mid := (lo + hi) / 2
		if m.ready[mid].Pass() <= p {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	m.ready = append(m.ready, nil)
	copy(m.ready[lo+1:], m.ready[lo:])
	m.ready[lo] = t
}

// Fetch removes and returns the lowest-pass ready task, or nil if the
// queue is empty.
func (m *Manager) Fetch() *TCB {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ready) == 0 {
		return nil
	}
	t := m.ready[0]
	m.ready = m.ready[1:]
	return t
}

// Len reports the number of ready tasks, for tests asserting queue order.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ready)
}

// Snapshot copies the current ready queue order, for tests asserting the
// pass-ordering invariant (spec.md §8) without mutating the queue.
func (m *Manager) Snapshot() []*TCB {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*TCB, len(m.ready))
	copy(out, m.ready)
	return out
}
