package protocol

import "errors"

// ErrOverflow is returned when output does not fit the scratch buffer
var ErrOverflow = errors.New("output buffer overflow")

// ScratchOutput collects console output in a fixed-size buffer so the
// target can hand it to the USB stack in one transfer
type ScratchOutput struct {
	buf [MessageMax]byte
	pos int
}

// NewScratchOutput creates an empty ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

// Write implements io.Writer. Data beyond the buffer is dropped and
// reported as ErrOverflow.
func (s *ScratchOutput) Write(data []byte) (int, error) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
	if n < len(data) {
		return n, ErrOverflow
	}
	return n, nil
}

// Len returns the number of buffered bytes
func (s *ScratchOutput) Len() int {
	return s.pos
}

// Result returns the buffered output
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Reset empties the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
}

// FifoBuffer is the receive ring between the USB reader and the console.
// One slot stays free to tell full from empty.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
}

// NewFifoBuffer creates a FifoBuffer holding up to capacity-1 bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits and returns the count
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		next := (f.write + 1) % len(f.buf)
		if next == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = next
		written++
	}
	return written
}

// Read moves up to len(data) bytes out of the buffer
func (f *FifoBuffer) Read(data []byte) int {
	n := 0
	for n < len(data) && f.read != f.write {
		data[n] = f.buf[f.read]
		f.read = (f.read + 1) % len(f.buf)
		n++
	}
	return n
}

// Available returns the number of bytes waiting to be read
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// IsEmpty reports whether nothing is waiting
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset drops buffered bytes
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
