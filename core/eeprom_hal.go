package core

import "io"

// EEPROM geometry of the controller. Custom Jingle Data lives in the upper
// half so the official firmware finds it at the same place.
const (
	EEPROMSize             = 4 * 1024
	JingleDataEEPROMOffset = 0x800
)

// PersistentStore is byte addressable non-volatile memory. Offsets are
// absolute within the device.
type PersistentStore interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
}
