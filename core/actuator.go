package core

import "errors"

// Haptic identifies one of the two haptic actuators
type Haptic uint8

const (
	HapticRight Haptic = iota
	HapticLeft
	HapticCount
)

// Pins used by the Steam Controller for the two haptics
const (
	PinHapticRight GPIOPin = 1*32 + 12 // PIO1_12
	PinHapticLeft  GPIOPin = 0*32 + 18 // PIO0_18
)

func (h Haptic) String() string {
	switch h {
	case HapticRight:
		return "right"
	case HapticLeft:
		return "left"
	}
	return "haptic(" + utoa(uint32(h)) + ")"
}

// ParseHaptic accepts "right" or "left"
func ParseHaptic(s string) (Haptic, error) {
	switch s {
	case "right":
		return HapticRight, nil
	case "left":
		return HapticLeft, nil
	}
	return 0, errors.New("hapticId is not \"right\" or \"left\"")
}

func (h Haptic) match() MatchChannel {
	return MatchChannel(h)
}

// Actuator drives the GPIO of one haptic
type Actuator struct {
	pin  GPIOPin
	gpio GPIODriver
}

// NewActuator configures pin as an output and drives it inactive
func NewActuator(gpio GPIODriver, pin GPIOPin) (*Actuator, error) {
	if err := gpio.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	a := &Actuator{pin: pin, gpio: gpio}
	if err := gpio.SetPin(pin, false); err != nil {
		return nil, err
	}
	return a, nil
}

// Pin returns the driven GPIO
func (a *Actuator) Pin() GPIOPin {
	return a.pin
}

// SetActive drives the haptic. Failures are reported on the debug writer
// since this runs from timer dispatch.
func (a *Actuator) SetActive(active bool) {
	if err := a.gpio.SetPin(a.pin, active); err != nil {
		DebugPrintln("haptic pin " + utoa(uint32(a.pin)) + ": " + err.Error())
	}
}

// Active reads back the pin state
func (a *Actuator) Active() bool {
	return a.gpio.ReadPin(a.pin)
}
