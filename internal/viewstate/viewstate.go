// Package viewstate tracks the load lifecycle of a view as a single phase
// value, so a view cannot be loading and failed at once.
package viewstate

import (
	"fmt"
	"sync"
)

// Phase is the load state of a view.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of a machine. Data holds the loaded value when Ready
// and the fallback when Failed. Err is set only when Failed.
type State[T any] struct {
	Phase Phase
	Data  T
	Err   error
}

// Ticket identifies one load. Only the latest ticket may settle the machine.
type Ticket uint64

// Machine moves idle → loading → {ready | error}. A new Begin supersedes any
// load still in flight, and Detach freezes the machine for good.
type Machine[T any] struct {
	mu       sync.Mutex
	state    State[T]
	current  Ticket
	detached bool
	fallback T
}

// New returns an idle machine. fallback is exposed as Data after a failure.
func New[T any](fallback T) *Machine[T] {
	return &Machine[T]{state: State[T]{Phase: Idle, Data: fallback}, fallback: fallback}
}

// Begin starts a load and returns its ticket.
func (m *Machine[T]) Begin() Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current++
	if !m.detached {
		m.state = State[T]{Phase: Loading, Data: m.fallback}
	}
	return m.current
}

// Resolve settles the load as ready. It reports false and changes nothing
// when the ticket is stale or the machine is detached.
func (m *Machine[T]) Resolve(t Ticket, data T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.acceptsLocked(t) {
		return false
	}
	m.state = State[T]{Phase: Ready, Data: data}
	return true
}

// Reject settles the load as failed with the fallback data.
func (m *Machine[T]) Reject(t Ticket, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.acceptsLocked(t) {
		return false
	}
	m.state = State[T]{Phase: Failed, Data: m.fallback, Err: err}
	return true
}

// Detach marks the owning view as gone. Pending loads can no longer settle.
func (m *Machine[T]) Detach() {
	m.mu.Lock()
	m.detached = true
	m.mu.Unlock()
}

// Detached reports whether Detach was called.
func (m *Machine[T]) Detached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detached
}

// State returns the current snapshot.
func (m *Machine[T]) State() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine[T]) acceptsLocked(t Ticket) bool {
	return !m.detached && t == m.current && m.state.Phase == Loading
}
