package core

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scjingle/protocol"
	"scjingle/storage"
)

func TestJingleStoreInit(t *testing.T) {
	s := NewJingleStore(0)

	assert.Equal(t, JingleDataMaxBytes, s.Capacity())
	assert.Equal(t, JDMagicWord, s.Magic())
	assert.Equal(t, uint8(0), s.Count())
	assert.Equal(t, uint16(JingleDataMaxBytes-6), s.BytesFree())
	assert.True(t, s.IsValid())

	_, err := s.JingleOffset(0)
	assert.ErrorIs(t, err, ErrBadIndex)
}

func TestJingleStoreAdd(t *testing.T) {
	s := NewJingleStore(0)

	require.NoError(t, s.AddJingle(0, 2, 3))
	assert.Equal(t, uint8(1), s.Count())
	off, err := s.JingleOffset(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(8), off)
	assert.Equal(t, uint16(JingleDataMaxBytes-6-2-JingleSize(2, 3)), s.BytesFree())

	n, err := s.NoteCount(HapticRight, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), n)
	n, err = s.NoteCount(HapticLeft, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), n)

	j, err := s.Jingle(0)
	require.NoError(t, err)
	assert.Equal(t, Jingle{Right: make([]Note, 2), Left: make([]Note, 3)}, j, "new notes are zeroed")
	assert.True(t, s.IsValid())
}

func TestJingleStoreInsertKeepsNotes(t *testing.T) {
	s := NewJingleStore(0)

	first := Jingle{
		Right: []Note{{DutyCycle: 1, PulseFreq: 100, Duration: 10}},
		Left:  []Note{{DutyCycle: 2, PulseFreq: 200, Duration: 20}, {Duration: 5}},
	}
	second := Jingle{
		Right: []Note{{DutyCycle: 3, PulseFreq: 300, Duration: 30}},
	}
	_, err := s.AppendJingle(first)
	require.NoError(t, err)
	_, err = s.AppendJingle(second)
	require.NoError(t, err)

	// Insert in front and in the middle
	require.NoError(t, s.AddJingle(0, 1, 1))
	require.NoError(t, s.AddJingle(2, 0, 2))
	require.Equal(t, uint8(4), s.Count())
	require.True(t, s.IsValid())

	got, err := s.Jingle(1)
	require.NoError(t, err)
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("jingle 1 mismatch (-want +got):\n%s", diff)
	}
	got, err = s.Jingle(3)
	require.NoError(t, err)
	assert.Equal(t, second.Right, got.Right)
	assert.Empty(t, got.Left)

	// Offsets stay in index order and blobs are packed
	prevEnd := uint16(6 + 2*4)
	for idx := uint8(0); idx < s.Count(); idx++ {
		off, err := s.JingleOffset(idx)
		require.NoError(t, err)
		assert.Equal(t, prevEnd, off, "jingle %d", idx)
		r, _ := s.NoteCount(HapticRight, idx)
		l, _ := s.NoteCount(HapticLeft, idx)
		prevEnd = off + uint16(JingleSize(r, l))
	}
	assert.Equal(t, uint16(s.Capacity())-prevEnd, s.BytesFree())
}

func TestJingleStoreAddDeleteRestores(t *testing.T) {
	s := NewJingleStore(0)
	for i := 0; i < 4; i++ {
		_, err := s.AppendJingle(Jingle{
			Right: []Note{{DutyCycle: uint8(i), PulseFreq: 250, Duration: 100}},
			Left:  []Note{{DutyCycle: uint8(i), PulseFreq: 125, Duration: 50}},
		})
		require.NoError(t, err)
	}

	for idx := uint8(0); idx <= s.Count(); idx++ {
		before := s.Bytes()
		free := s.BytesFree()

		require.NoError(t, s.AddJingle(idx, 3, 2))
		require.NoError(t, s.SetNote(idx, HapticLeft, 1, Note{DutyCycle: 9, PulseFreq: 9, Duration: 9}))
		require.NoError(t, s.DeleteJingle(idx))

		if diff := cmp.Diff(before, s.Bytes()); diff != "" {
			t.Errorf("add+delete at %d changed the arena (-want +got):\n%s", idx, diff)
		}
		assert.Equal(t, free, s.BytesFree())
	}
}

func TestJingleStoreDelete(t *testing.T) {
	s := NewJingleStore(0)
	for i := 0; i < 3; i++ {
		_, err := s.AppendJingle(Jingle{Right: []Note{{DutyCycle: uint8(10 + i), PulseFreq: 1, Duration: 1}}})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteJingle(1))
	assert.Equal(t, uint8(2), s.Count())
	n, err := s.Note(1, HapticRight, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(12), n.DutyCycle, "later jingles move down")

	require.NoError(t, s.DeleteJingle(0))
	require.NoError(t, s.DeleteJingle(0))
	assert.Equal(t, uint8(0), s.Count())
	assert.Equal(t, uint16(JingleDataMaxBytes-6), s.BytesFree())
	assert.Equal(t, NewJingleStore(0).Bytes(), s.Bytes(), "tail is zeroed")

	assert.ErrorIs(t, s.DeleteJingle(0), ErrBadIndex)
}

func TestJingleStoreBadIndex(t *testing.T) {
	s := NewJingleStore(0)
	require.NoError(t, s.AddJingle(0, 1, 0))

	assert.ErrorIs(t, s.AddJingle(2, 1, 1), ErrBadIndex)
	_, err := s.Notes(HapticRight, 1)
	assert.ErrorIs(t, err, ErrBadIndex)
	_, err = s.Notes(HapticCount, 0)
	assert.ErrorIs(t, err, ErrBadIndex)
	assert.ErrorIs(t, s.SetNote(0, HapticRight, 1, Note{}), ErrBadIndex)
	assert.ErrorIs(t, s.SetNote(0, HapticLeft, 0, Note{}), ErrBadIndex)
}

func TestJingleStoreOutOfSpace(t *testing.T) {
	s := NewJingleStore(64)

	// 6 header + 2 slot + 4 counts + 6*8 notes = 60
	require.NoError(t, s.AddJingle(0, 4, 4))
	assert.Equal(t, uint16(4), s.BytesFree())

	before := s.Bytes()
	assert.ErrorIs(t, s.AddJingle(1, 0, 0), ErrOutOfSpace)
	assert.Equal(t, before, s.Bytes(), "failed add leaves the arena untouched")

	// Exactly fits
	s = NewJingleStore(6 + 2 + JingleSize(1, 1))
	require.NoError(t, s.AddJingle(0, 1, 1))
	assert.Equal(t, uint16(0), s.BytesFree())
}

func TestJingleStoreMaxJingles(t *testing.T) {
	s := NewJingleStore(0xffff)
	for i := 0; i < MaxJingles; i++ {
		require.NoError(t, s.AddJingle(uint8(i), 0, 0))
	}
	assert.Equal(t, uint8(MaxJingles), s.Count())
	assert.ErrorIs(t, s.AddJingle(0, 0, 0), ErrOutOfSpace)
	assert.True(t, s.IsValid())
}

func TestJingleStoreNotesAlias(t *testing.T) {
	s := NewJingleStore(0)
	require.NoError(t, s.AddJingle(0, 2, 0))

	view, err := s.Notes(HapticRight, 0)
	require.NoError(t, err)
	want := Note{DutyCycle: 128, PulseFreq: 250, Duration: 100}
	require.NoError(t, s.SetNote(0, HapticRight, 1, want))
	assert.Equal(t, want, view.At(1))
}

func TestJingleStoreSaveLoad(t *testing.T) {
	eeprom := storage.NewMemory(EEPROMSize)

	s := NewJingleStore(0)
	_, err := s.AppendJingle(Jingle{
		Right: []Note{{DutyCycle: 128, PulseFreq: 250, Duration: 100}},
		Left:  []Note{{Duration: 50}, {DutyCycle: 64, PulseFreq: 440, Duration: 200}},
	})
	require.NoError(t, err)
	require.NoError(t, s.SaveToPersisted(eeprom))

	raw := eeprom.Bytes()
	assert.Equal(t, s.Bytes(), raw[JingleDataEEPROMOffset:JingleDataEEPROMOffset+JingleDataMaxBytes])
	assert.Equal(t, make([]byte, JingleDataEEPROMOffset), raw[:JingleDataEEPROMOffset], "lower half untouched")

	loaded := NewJingleStore(0)
	require.NoError(t, loaded.LoadFromPersisted(eeprom))
	assert.Equal(t, s.Bytes(), loaded.Bytes())
	assert.Equal(t, s.BytesFree(), loaded.BytesFree())
	assert.Equal(t, s.Checksum(), loaded.Checksum())
}

func TestJingleStoreLoadInvalid(t *testing.T) {
	eeprom := storage.NewMemory(EEPROMSize)
	s := NewJingleStore(0)
	require.NoError(t, s.LoadDefaults())
	require.NoError(t, s.SaveToPersisted(eeprom))

	// Scrambled magic
	_, err := eeprom.WriteAt([]byte{0x12, 0x34}, JingleDataEEPROMOffset)
	require.NoError(t, err)
	err = s.LoadFromPersisted(eeprom)
	assert.ErrorIs(t, err, ErrInvalidPersistedData)
	assert.Equal(t, uint8(0), s.Count())
	assert.True(t, s.IsValid())
	assert.Equal(t, NewJingleStore(0).Bytes(), s.Bytes())

	// Offset pointing past the arena
	img := FactoryJingleData()
	binary.LittleEndian.PutUint16(img[6+2*13:], 0x3ff)
	assert.ErrorIs(t, s.LoadImage(img), ErrInvalidPersistedData)
	assert.Equal(t, uint8(0), s.Count())

	// Offsets out of order
	img = FactoryJingleData()
	binary.LittleEndian.PutUint16(img[6:], 0x40)
	assert.ErrorIs(t, s.LoadImage(img), ErrInvalidPersistedData)

	// Duty cycle word wider than a byte
	img = FactoryJingleData()
	binary.LittleEndian.PutUint16(img[0x22+jingleHdrBytes:], 0x180)
	assert.ErrorIs(t, s.LoadImage(img), ErrInvalidPersistedData)
	assert.Equal(t, uint8(0), s.Count())

	// Count whose offset table cannot fit
	small := NewJingleStore(16)
	img = make([]byte, 16)
	binary.LittleEndian.PutUint16(img, JDMagicWord)
	img[4] = 6
	assert.ErrorIs(t, small.LoadImage(img), ErrInvalidPersistedData)
}

func TestJingleStoreClearPersisted(t *testing.T) {
	eeprom := storage.NewMemory(EEPROMSize)
	s := NewJingleStore(0)
	require.NoError(t, s.LoadDefaults())
	require.NoError(t, s.SaveToPersisted(eeprom))

	require.NoError(t, s.ClearPersisted(eeprom))
	assert.Equal(t, uint8(FactoryJingleCount), s.Count(), "in-memory copy untouched")
	assert.Equal(t, make([]byte, 6), eeprom.Bytes()[JingleDataEEPROMOffset:JingleDataEEPROMOffset+6])

	assert.ErrorIs(t, s.LoadFromPersisted(eeprom), ErrInvalidPersistedData)
	assert.Equal(t, uint8(0), s.Count())
}

type failingStore struct{}

var errBus = errors.New("bus fault")

func (failingStore) ReadAt([]byte, int64) (int, error)  { return 0, errBus }
func (failingStore) WriteAt([]byte, int64) (int, error) { return 0, errBus }
func (failingStore) Size() int64                        { return EEPROMSize }

func TestJingleStoreStorageErrors(t *testing.T) {
	s := NewJingleStore(0)
	require.NoError(t, s.LoadDefaults())

	err := s.SaveToPersisted(failingStore{})
	assert.ErrorIs(t, err, ErrStorageIO)
	assert.ErrorIs(t, err, errBus)
	assert.ErrorIs(t, s.ClearPersisted(failingStore{}), ErrStorageIO)
	assert.Equal(t, uint8(FactoryJingleCount), s.Count())

	err = s.LoadFromPersisted(failingStore{})
	assert.ErrorIs(t, err, ErrStorageIO)
	assert.Equal(t, uint8(0), s.Count(), "failed load re-initializes")
}

func TestJingleStoreDefaults(t *testing.T) {
	s := NewJingleStore(0)
	require.NoError(t, s.LoadDefaults())

	assert.Equal(t, uint8(FactoryJingleCount), s.Count())
	wantOffsets := []uint16{34, 98, 222, 298, 344, 378, 406, 476, 672, 718, 758, 792, 844, 878}
	var offsets []uint16
	for idx := uint8(0); idx < s.Count(); idx++ {
		off, err := s.JingleOffset(idx)
		require.NoError(t, err)
		offsets = append(offsets, off)
	}
	assert.Equal(t, wantOffsets, offsets)

	r, err := s.NoteCount(HapticRight, 7)
	require.NoError(t, err)
	l, err := s.NoteCount(HapticLeft, 7)
	require.NoError(t, err)
	assert.Equal(t, [2]uint16{4, 28}, [2]uint16{r, l})

	assert.Equal(t, uint16(JingleDataMaxBytes-1014), s.BytesFree())
	img := FactoryJingleData()
	covered := append([]byte{img[0], img[1], img[4]}, img[6:1014]...)
	assert.Equal(t, protocol.CRC16(covered), s.Checksum())
}

func TestJingleStoreChecksumSkipsPadding(t *testing.T) {
	factory := NewJingleStore(0)
	require.NoError(t, factory.LoadDefaults())

	rebuilt := NewJingleStore(0)
	for i := uint8(0); i < factory.Count(); i++ {
		j, err := factory.Jingle(i)
		require.NoError(t, err)
		_, err = rebuilt.AppendJingle(j)
		require.NoError(t, err)
	}

	// The factory image carries a stray padding byte after the count
	assert.Equal(t, byte(0x7b), factory.Bytes()[jdPadOffset])
	assert.Equal(t, byte(0), rebuilt.Bytes()[jdPadOffset])
	assert.Equal(t, factory.Bytes()[jdOffsetsOffset:], rebuilt.Bytes()[jdOffsetsOffset:])
	assert.Equal(t, factory.BytesFree(), rebuilt.BytesFree())
	assert.Equal(t, factory.Checksum(), rebuilt.Checksum())

	// Covered bytes still count
	require.NoError(t, rebuilt.SetNote(0, HapticRight, 0, Note{DutyCycle: 1, PulseFreq: 1, Duration: 1}))
	assert.NotEqual(t, factory.Checksum(), rebuilt.Checksum())
}
