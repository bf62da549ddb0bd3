// Package storage provides byte addressable persistent stores for Jingle
// Data: RAM for tests and simulation, a host image file, and I2C EEPROM.
package storage

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrOutOfRange is returned for accesses past the end of a store
var ErrOutOfRange = errors.New("access beyond end of storage")

// checkRange validates a write of n bytes at off into a store of size bytes
func checkRange(off int64, n int, size int64) error {
	if off < 0 || off+int64(n) > size {
		return fmt.Errorf("%w: %d bytes at 0x%x, size 0x%x", ErrOutOfRange, n, off, size)
	}
	return nil
}

// Memory is a RAM backed store
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory creates a zero filled store of size bytes
func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the store capacity
func (m *Memory) Size() int64 {
	return int64(len(m.data))
}

// ReadAt implements io.ReaderAt
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if off < 0 || off > int64(len(m.data)) {
		return 0, fmt.Errorf("%w: read at 0x%x", ErrOutOfRange, off)
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Writes past the end fail without
// modifying the store.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkRange(off, len(p), int64(len(m.data))); err != nil {
		return 0, err
	}
	return copy(m.data[off:], p), nil
}

// Bytes returns a copy of the store contents
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}
