package storage

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24cx"
)

// AT24 geometry of the AT24C32 fitted next to the MCU
const (
	AT24C32Size     = 4096
	AT24C32PageSize = 32
)

// AT24 is a store on an AT24Cxx I2C EEPROM
type AT24 struct {
	dev  at24cx.Device
	size int64
}

// NewAT24 creates a store on an already configured bus. Nothing is sent to
// the device until the first access.
func NewAT24(bus drivers.I2C, size int64, pageSize uint16) *AT24 {
	dev := at24cx.New(bus)
	dev.Configure(at24cx.Config{
		PageSize:      pageSize,
		EndRAMAddress: uint16(size),
	})
	return &AT24{dev: dev, size: size}
}

// Size returns the EEPROM capacity
func (e *AT24) Size() int64 {
	return e.size
}

// ReadAt implements io.ReaderAt. The device auto-increments its address, so
// any length within the array is one bus transaction.
func (e *AT24) ReadAt(p []byte, off int64) (int, error) {
	if err := checkRange(off, len(p), e.size); err != nil {
		return 0, err
	}
	return e.dev.ReadAt(p, off)
}

// WriteAt implements io.WriterAt. The driver splits the data into page
// writes and waits out the write cycle after each one.
func (e *AT24) WriteAt(p []byte, off int64) (int, error) {
	if err := checkRange(off, len(p), e.size); err != nil {
		return 0, err
	}
	return e.dev.WriteAt(p, off)
}
