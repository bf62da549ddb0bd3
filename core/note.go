package core

import "encoding/binary"

// NoteSize is the serialized size of a Note: three little-endian u16 words
// (duty cycle, pulse frequency, duration).
const NoteSize = 6

// Note is one segment of a haptic pulse train
type Note struct {
	DutyCycle uint8  // 0-255, high time is DutyCycle/512 of each period
	PulseFreq uint16 // Hz
	Duration  uint16 // ms
}

// IsDelay reports whether the Note holds the haptic inactive
func (n Note) IsDelay() bool {
	return n.DutyCycle == 0 || n.PulseFreq == 0
}

func decodeNote(b []byte) Note {
	return Note{
		DutyCycle: uint8(binary.LittleEndian.Uint16(b[0:])),
		PulseFreq: binary.LittleEndian.Uint16(b[2:]),
		Duration:  binary.LittleEndian.Uint16(b[4:]),
	}
}

func (n Note) put(b []byte) {
	binary.LittleEndian.PutUint16(b[0:], uint16(n.DutyCycle))
	binary.LittleEndian.PutUint16(b[2:], n.PulseFreq)
	binary.LittleEndian.PutUint16(b[4:], n.Duration)
}

// NoteSequence is a read-only list of Notes for one haptic. Sequences
// returned by JingleStore are views into the Jingle Data arena and stay
// valid only until the arena is next modified.
type NoteSequence struct {
	raw []byte
}

// NewNoteSequence serializes notes into a sequence owned by the caller
func NewNoteSequence(notes ...Note) NoteSequence {
	raw := make([]byte, len(notes)*NoteSize)
	for i, n := range notes {
		n.put(raw[i*NoteSize:])
	}
	return NoteSequence{raw: raw}
}

// Len returns the number of Notes
func (s NoteSequence) Len() int {
	return len(s.raw) / NoteSize
}

// At returns Note i
func (s NoteSequence) At(i int) Note {
	return decodeNote(s.raw[i*NoteSize:])
}

// Notes copies the sequence out
func (s NoteSequence) Notes() []Note {
	out := make([]Note, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}
