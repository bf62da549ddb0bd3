//go:build rp2040

package main

import (
	"machine"
	"time"

	"scjingle/core"
	"scjingle/protocol"
)

var (
	// Buffers for communication
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.ScratchOutput
	console      *core.Console

	// Debug counters
	msgerrors uint32

	// USB connection state tracking
	usbWasDisconnected       bool
	consecutiveWriteFailures uint32
)

func main() {
	// Disable the watchdog so a previous configuration does not survive reset
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	InitUSB()
	InitClock()

	core.SetGPIODriver(NewRPGPIODriver())

	var eeprom core.PersistentStore
	if at24, err := InitEEPROM(); err == nil {
		eeprom = at24
	}

	fw, err := core.NewFirmware(nil, nil, eeprom, protocol.Version)
	if err != nil {
		halt()
	}
	// Falls back to the factory jingles when the EEPROM copy is unusable
	fw.LoadJingleData()

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewScratchOutput()
	console = core.NewConsole(fw.Commands, usbWriter{})
	console.Start()

	go usbReaderLoop()

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			UpdateSystemTime()
			fw.Timer.Dispatch()

			if inputBuffer.Available() > 0 {
				console.FeedFifo(inputBuffer)
			}
			if len(outputBuffer.Result()) > 0 {
				writeUSB()
			}
		}()

		// Yield to the USB reader
		time.Sleep(10 * time.Microsecond)
	}
}

func halt() {
	for {
		time.Sleep(time.Second)
	}
}

// usbReaderLoop runs in a goroutine to continuously read USB data
func usbReaderLoop() {
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		if USBAvailable() > 0 {
			data, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(1 * time.Millisecond)
				continue
			}

			// A host that reconnects gets a fresh prompt
			if usbWasDisconnected {
				usbWasDisconnected = false
				consecutiveWriteFailures = 0
				inputBuffer.Reset()
				outputBuffer.Reset()
				console.Start()
			}

			if inputBuffer.Write([]byte{data}) == 0 {
				msgerrors++
				time.Sleep(10 * time.Millisecond)
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// usbWriter feeds console output into the scratch buffer, sending it to
// USB whenever it fills up
type usbWriter struct{}

func (usbWriter) Write(p []byte) (int, error) {
	written := 0
	for {
		n, err := outputBuffer.Write(p[written:])
		written += n
		if err == nil {
			return written, nil
		}
		writeUSB()
		if len(outputBuffer.Result()) > 0 {
			return written, err
		}
	}
}

// writeUSB writes the output buffer to USB
func writeUSB() {
	result := outputBuffer.Result()
	written := 0
	for written < len(result) {
		n, err := USBWriteBytes(result[written:])
		if err != nil || n == 0 {
			// Likely a disconnect. Stale output is dropped after several
			// failures.
			consecutiveWriteFailures++
			if consecutiveWriteFailures > 10 {
				usbWasDisconnected = true
				consecutiveWriteFailures = 0
				outputBuffer.Reset()
				inputBuffer.Reset()
			}
			return
		}
		written += n
	}
	consecutiveWriteFailures = 0
	outputBuffer.Reset()
}
