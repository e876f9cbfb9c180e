package gesture

import "sync/atomic"

// Mailbox is a single-slot cell shared by the detection loop (writer) and the
// render loop (reader). Every Store publishes a fresh copy, so a Load never
// observes a partially written state.
type Mailbox struct {
	current    atomic.Pointer[InteractionState]
	generation atomic.Uint64
}

// NewMailbox creates a Mailbox holding the idle state.
func NewMailbox() *Mailbox {
	m := &Mailbox{}
	idle := Idle()
	m.current.Store(&idle)
	return m
}

// Store replaces the held state as a whole.
func (m *Mailbox) Store(s InteractionState) {
	m.current.Store(&s)
	m.generation.Add(1)
}

// Load returns the most recently stored state.
func (m *Mailbox) Load() InteractionState {
	return *m.current.Load()
}

// Generation returns how many times Store has been called.
func (m *Mailbox) Generation() uint64 {
	return m.generation.Load()
}
