//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"scjingle/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // Raw timer high word
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// InitClock starts the tick counter from the hardware timer. The RP2040
// timer already counts microseconds, the haptic timer resolution.
func InitClock() {
	UpdateSystemTime()
	core.TimerInit()
}

// GetHardwareTime returns the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// GetHardwareUptime reads the full 64-bit microsecond counter
func GetHardwareUptime() uint64 {
	// high, low, high again to detect a carry between the reads
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// UpdateSystemTime copies the hardware counter into the core tick counter
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
