package core

import (
	"errors"
	"sync"
)

// Edge is one recorded output transition
type Edge struct {
	Pin  GPIOPin
	Tick uint32
	High bool
}

// MemGPIO is an in-memory GPIODriver for host builds and tests. It records
// every level change with the tick it happened at.
type MemGPIO struct {
	mu      sync.Mutex
	clock   Clock
	outputs map[GPIOPin]bool
	edges   []Edge
}

// NewMemGPIO creates a MemGPIO timestamping edges with clock
func NewMemGPIO(clock Clock) *MemGPIO {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemGPIO{
		clock:   clock,
		outputs: make(map[GPIOPin]bool),
	}
}

func (m *MemGPIO) ConfigureOutput(pin GPIOPin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[pin] = false
	return nil
}

func (m *MemGPIO) SetPin(pin GPIOPin, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.outputs[pin]
	if !ok {
		return errors.New("pin not configured as output")
	}
	if cur != value {
		m.edges = append(m.edges, Edge{Pin: pin, Tick: m.clock.Now(), High: value})
	}
	m.outputs[pin] = value
	return nil
}

func (m *MemGPIO) ReadPin(pin GPIOPin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outputs[pin]
}

// Edges returns the recorded transitions of pin in order
func (m *MemGPIO) Edges(pin GPIOPin) []Edge {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Edge
	for _, e := range m.edges {
		if e.Pin == pin {
			out = append(out, e)
		}
	}
	return out
}

// ResetEdges drops the recorded transitions
func (m *MemGPIO) ResetEdges() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = m.edges[:0]
}

// Drain returns the transitions recorded since the last call and forgets
// them
func (m *MemGPIO) Drain() []Edge {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.edges
	m.edges = nil
	return out
}
