// Jingle Data arena
// Jingles are packed back to back in one fixed size byte buffer that is
// persisted verbatim to EEPROM:
//
//	0x00  u16 magic (0xbead)
//	0x02  u16 reserved
//	0x04  u8  jingle count
//	0x05  u8  padding
//	0x06  u16 offset of each jingle, in index order
//	....  jingle blobs
//
// Each jingle blob is a u16 right note count, a u16 left note count, then the
// right notes followed by the left notes. All multi-byte fields are little
// endian.
package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"scjingle/protocol"
)

const (
	JingleDataMaxBytes        = 0x400
	JDMagicWord        uint16 = 0xbead
	MaxJingles                = 255

	jdMagicOffset    = 0
	jdReservedOffset = 2
	jdCountOffset    = 4
	jdPadOffset      = 5
	jdOffsetsOffset  = 6
	jingleHdrBytes   = 4
)

// Jingle is an unpacked copy of one arena entry
type Jingle struct {
	Right []Note
	Left  []Note
}

// JingleSize returns the number of arena bytes a jingle blob occupies, not
// counting its offset table slot.
func JingleSize(numRight, numLeft uint16) int {
	return jingleHdrBytes + (int(numRight)+int(numLeft))*NoteSize
}

// JingleStore owns the Jingle Data arena
type JingleStore struct {
	data      []byte
	bytesFree int
}

// NewJingleStore creates an initialized store. A capacity of zero selects
// JingleDataMaxBytes.
func NewJingleStore(capacity int) *JingleStore {
	if capacity <= 0 {
		capacity = JingleDataMaxBytes
	}
	if capacity < jdOffsetsOffset {
		capacity = jdOffsetsOffset
	}
	if capacity > 0xffff {
		capacity = 0xffff
	}
	s := &JingleStore{data: make([]byte, capacity)}
	s.Init()
	return s
}

func (s *JingleStore) get16(off int) int {
	return int(binary.LittleEndian.Uint16(s.data[off:]))
}

func (s *JingleStore) set16(off, v int) {
	binary.LittleEndian.PutUint16(s.data[off:], uint16(v))
}

// Init resets the arena to an empty, valid state
func (s *JingleStore) Init() {
	clear(s.data)
	s.set16(jdMagicOffset, int(JDMagicWord))
	s.bytesFree = len(s.data) - jdOffsetsOffset
}

// Capacity returns the arena size in bytes
func (s *JingleStore) Capacity() int {
	return len(s.data)
}

// Count returns the number of stored jingles
func (s *JingleStore) Count() uint8 {
	return s.data[jdCountOffset]
}

// Magic returns the magic word at the head of the arena
func (s *JingleStore) Magic() uint16 {
	return uint16(s.get16(jdMagicOffset))
}

// BytesFree returns the unused space at the end of the arena
func (s *JingleStore) BytesFree() uint16 {
	return uint16(s.bytesFree)
}

func (s *JingleStore) tableEnd() int {
	return jdOffsetsOffset + 2*int(s.Count())
}

func (s *JingleStore) offsetAt(idx int) int {
	return s.get16(jdOffsetsOffset + 2*idx)
}

// used is the end of the last blob, or of the offset table when empty.
// Only meaningful on a validated arena.
func (s *JingleStore) used() int {
	n := int(s.Count())
	if n == 0 {
		return jdOffsetsOffset
	}
	off := s.offsetAt(n - 1)
	return off + JingleSize(uint16(s.get16(off)), uint16(s.get16(off+2)))
}

// locate returns the bounds-checked position and note counts of jingle idx
func (s *JingleStore) locate(idx uint8) (off, numRight, numLeft int, err error) {
	if idx >= s.Count() {
		return 0, 0, 0, ErrBadIndex
	}
	off = s.offsetAt(int(idx))
	if off < s.tableEnd() || off+jingleHdrBytes > len(s.data) {
		return 0, 0, 0, fmt.Errorf("%w: jingle %d offset 0x%x", ErrInvalidPersistedData, idx, off)
	}
	numRight = s.get16(off)
	numLeft = s.get16(off + 2)
	if off+JingleSize(uint16(numRight), uint16(numLeft)) > len(s.data) {
		return 0, 0, 0, fmt.Errorf("%w: jingle %d overruns arena", ErrInvalidPersistedData, idx)
	}
	return off, numRight, numLeft, nil
}

// JingleOffset returns the arena offset of jingle idx
func (s *JingleStore) JingleOffset(idx uint8) (uint16, error) {
	off, _, _, err := s.locate(idx)
	if err != nil {
		return 0, err
	}
	return uint16(off), nil
}

// NoteCount returns how many notes jingle idx holds for haptic h
func (s *JingleStore) NoteCount(h Haptic, idx uint8) (uint16, error) {
	seq, err := s.Notes(h, idx)
	if err != nil {
		return 0, err
	}
	return uint16(seq.Len()), nil
}

// Notes returns a view of the notes of jingle idx for haptic h. The view
// aliases the arena.
func (s *JingleStore) Notes(h Haptic, idx uint8) (NoteSequence, error) {
	if h >= HapticCount {
		return NoteSequence{}, ErrBadIndex
	}
	off, numRight, numLeft, err := s.locate(idx)
	if err != nil {
		return NoteSequence{}, err
	}

	start := off + jingleHdrBytes
	n := numRight
	if h == HapticLeft {
		start += numRight * NoteSize
		n = numLeft
	}
	end := start + n*NoteSize
	return NoteSequence{raw: s.data[start:end:end]}, nil
}

// Note returns note noteIdx of jingle idx for haptic h
func (s *JingleStore) Note(idx uint8, h Haptic, noteIdx uint16) (Note, error) {
	seq, err := s.Notes(h, idx)
	if err != nil {
		return Note{}, err
	}
	if int(noteIdx) >= seq.Len() {
		return Note{}, ErrBadIndex
	}
	return seq.At(int(noteIdx)), nil
}

// SetNote overwrites note noteIdx of jingle idx for haptic h in place
func (s *JingleStore) SetNote(idx uint8, h Haptic, noteIdx uint16, note Note) error {
	seq, err := s.Notes(h, idx)
	if err != nil {
		return err
	}
	if int(noteIdx) >= seq.Len() {
		return ErrBadIndex
	}
	note.put(seq.raw[int(noteIdx)*NoteSize:])
	return nil
}

// AddJingle inserts a jingle with zeroed notes at idx, moving jingles idx
// and later up by one. idx may equal Count to append.
func (s *JingleStore) AddJingle(idx uint8, numRight, numLeft uint16) error {
	count := int(s.Count())
	if int(idx) > count {
		return ErrBadIndex
	}
	if count >= MaxJingles {
		return ErrOutOfSpace
	}
	size := JingleSize(numRight, numLeft)
	need := 2 + size
	if need > s.bytesFree {
		return ErrOutOfSpace
	}

	used := len(s.data) - s.bytesFree
	tableEnd := s.tableEnd()
	slot := jdOffsetsOffset + 2*int(idx)
	pos := used
	if int(idx) < count {
		pos = s.offsetAt(int(idx))
	}

	// Work from the end of the arena back so nothing is overwritten before
	// it has moved.
	copy(s.data[pos+need:used+need], s.data[pos:used])
	copy(s.data[tableEnd+2:pos+2], s.data[tableEnd:pos])
	copy(s.data[slot+2:tableEnd+2], s.data[slot:tableEnd])

	for i := 0; i <= count; i++ {
		if i == int(idx) {
			continue
		}
		off := s.offsetAt(i)
		if i < int(idx) {
			off += 2
		} else {
			off += need
		}
		s.set16(jdOffsetsOffset+2*i, off)
	}

	start := pos + 2
	clear(s.data[start : start+size])
	s.set16(start, int(numRight))
	s.set16(start+2, int(numLeft))
	s.set16(slot, start)

	s.data[jdCountOffset] = uint8(count + 1)
	s.bytesFree -= need
	return nil
}

// DeleteJingle removes jingle idx and compacts the arena
func (s *JingleStore) DeleteJingle(idx uint8) error {
	off, numRight, numLeft, err := s.locate(idx)
	if err != nil {
		return err
	}
	count := int(s.Count())
	size := JingleSize(uint16(numRight), uint16(numLeft))
	need := 2 + size
	used := len(s.data) - s.bytesFree
	tableEnd := s.tableEnd()
	slot := jdOffsetsOffset + 2*int(idx)

	copy(s.data[slot:tableEnd-2], s.data[slot+2:tableEnd])
	copy(s.data[tableEnd-2:off-2], s.data[tableEnd:off])
	copy(s.data[off-2:used-need], s.data[off+size:used])
	clear(s.data[used-need : used])

	count--
	for i := 0; i < count; i++ {
		o := s.offsetAt(i)
		if i < int(idx) {
			o -= 2
		} else {
			o -= need
		}
		s.set16(jdOffsetsOffset+2*i, o)
	}

	s.data[jdCountOffset] = uint8(count)
	s.bytesFree += need
	return nil
}

// Jingle returns a copy of jingle idx
func (s *JingleStore) Jingle(idx uint8) (Jingle, error) {
	right, err := s.Notes(HapticRight, idx)
	if err != nil {
		return Jingle{}, err
	}
	left, err := s.Notes(HapticLeft, idx)
	if err != nil {
		return Jingle{}, err
	}
	return Jingle{Right: right.Notes(), Left: left.Notes()}, nil
}

// AppendJingle stores j after the last jingle and returns its index
func (s *JingleStore) AppendJingle(j Jingle) (uint8, error) {
	if len(j.Right) > 0xffff || len(j.Left) > 0xffff {
		return 0, ErrOutOfSpace
	}
	idx := s.Count()
	if err := s.AddJingle(idx, uint16(len(j.Right)), uint16(len(j.Left))); err != nil {
		return 0, err
	}
	for i, n := range j.Right {
		if err := s.SetNote(idx, HapticRight, uint16(i), n); err != nil {
			return 0, err
		}
	}
	for i, n := range j.Left {
		if err := s.SetNote(idx, HapticLeft, uint16(i), n); err != nil {
			return 0, err
		}
	}
	return idx, nil
}

// validate checks the header and that every blob lies inside the arena in
// index order without overlap.
func (s *JingleStore) validate() error {
	if magic := uint16(s.get16(jdMagicOffset)); magic != JDMagicWord {
		return fmt.Errorf("%w: magic 0x%04x", ErrInvalidPersistedData, magic)
	}
	tableEnd := s.tableEnd()
	if tableEnd > len(s.data) {
		return fmt.Errorf("%w: %d jingles do not fit", ErrInvalidPersistedData, s.Count())
	}

	prevEnd := tableEnd
	for i := 0; i < int(s.Count()); i++ {
		off := s.offsetAt(i)
		if off < prevEnd || off+jingleHdrBytes > len(s.data) {
			return fmt.Errorf("%w: jingle %d offset 0x%x", ErrInvalidPersistedData, i, off)
		}
		end := off + JingleSize(uint16(s.get16(off)), uint16(s.get16(off+2)))
		if end > len(s.data) {
			return fmt.Errorf("%w: jingle %d overruns arena", ErrInvalidPersistedData, i)
		}
		for n := off + jingleHdrBytes; n < end; n += NoteSize {
			if duty := s.get16(n); duty > 0xff {
				return fmt.Errorf("%w: jingle %d duty cycle %d at 0x%x", ErrInvalidPersistedData, i, duty, n)
			}
		}
		prevEnd = end
	}
	return nil
}

// IsValid reports whether the arena holds well formed Jingle Data
func (s *JingleStore) IsValid() bool {
	return s.validate() == nil
}

// LoadImage replaces the arena with img. Invalid images leave the store
// initialized and empty.
func (s *JingleStore) LoadImage(img []byte) error {
	if len(img) > len(s.data) {
		s.Init()
		return fmt.Errorf("%w: image is %d bytes, arena holds %d", ErrInvalidPersistedData, len(img), len(s.data))
	}
	copy(s.data, img)
	clear(s.data[len(img):])
	return s.afterLoad()
}

// LoadDefaults replaces the arena with the factory jingles
func (s *JingleStore) LoadDefaults() error {
	img := FactoryJingleData()
	if len(img) > len(s.data) {
		img = img[:len(s.data)]
	}
	return s.LoadImage(img)
}

func (s *JingleStore) afterLoad() error {
	if err := s.validate(); err != nil {
		s.Init()
		return err
	}
	s.bytesFree = len(s.data) - s.used()
	return nil
}

// LoadFromPersisted reads the arena from store. Unreadable or invalid data
// leaves the store initialized and empty.
func (s *JingleStore) LoadFromPersisted(store PersistentStore) error {
	n, err := store.ReadAt(s.data, JingleDataEEPROMOffset)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(s.data)) {
		s.Init()
		return fmt.Errorf("%w: %w", ErrStorageIO, err)
	}
	return s.afterLoad()
}

// SaveToPersisted writes the whole arena to store
func (s *JingleStore) SaveToPersisted(store PersistentStore) error {
	if _, err := store.WriteAt(s.data, JingleDataEEPROMOffset); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageIO, err)
	}
	return nil
}

// ClearPersisted zeroes the persisted header so the next load sees no
// Jingle Data. The in-memory arena is untouched.
func (s *JingleStore) ClearPersisted(store PersistentStore) error {
	var zero [2]byte
	for _, off := range []int64{jdMagicOffset, jdReservedOffset, jdCountOffset} {
		if _, err := store.WriteAt(zero[:], JingleDataEEPROMOffset+off); err != nil {
			return fmt.Errorf("%w: %w", ErrStorageIO, err)
		}
	}
	return nil
}

// Bytes returns a copy of the whole arena
func (s *JingleStore) Bytes() []byte {
	return append([]byte(nil), s.data...)
}

// Checksum returns the CRC16 of the used part of the arena. The reserved
// word and the padding byte after the count are not covered.
func (s *JingleStore) Checksum() uint16 {
	crc := protocol.CRC16(s.data[jdMagicOffset:jdReservedOffset])
	crc = protocol.CRC16Update(crc, s.data[jdCountOffset:jdPadOffset])
	return protocol.CRC16Update(crc, s.data[jdOffsetsOffset:len(s.data)-s.bytesFree])
}
