//go:build rp2040

package main

import (
	"errors"
	"machine"

	"scjingle/core"
)

// Haptic actuator wiring of the RP2040 board. The core pin numbers follow
// the original controller's port/pin scheme.
var boardPins = map[core.GPIOPin]machine.Pin{
	core.PinHapticRight: machine.GPIO14,
	core.PinHapticLeft:  machine.GPIO15,
}

var errUnknownPin = errors.New("pin not wired on this board")

// RPGPIODriver implements core.GPIODriver on the RP2040 pins
type RPGPIODriver struct {
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a digital output, driven low
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}
	machinePin, ok := boardPins[pin]
	if !ok {
		return errUnknownPin
	}

	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machinePin.Low()
	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return errors.New("pin not configured as output")
	}
	machinePin.Set(value)
	return nil
}

// ReadPin reads back the pin level
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return false
	}
	return machinePin.Get()
}
