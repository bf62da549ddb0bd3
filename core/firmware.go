package core

import (
	"errors"
	"fmt"
)

// JingleSource tells where the Jingle Data came from at boot
type JingleSource uint8

const (
	JingleSourceEEPROM JingleSource = iota
	JingleSourceDefaults
)

func (s JingleSource) String() string {
	if s == JingleSourceEEPROM {
		return "eeprom"
	}
	return "defaults"
}

// Firmware bundles the haptic stack of one board: the pulse timer, both
// actuators, the sequencer, the Jingle Data and the console commands.
type Firmware struct {
	Timer     *PulseTimer
	Sequencer *NoteSequencer
	Engine    *JingleEngine
	EEPROM    PersistentStore
	Commands  *CommandRegistry
}

// NewFirmware configures the haptic pins on gpio and registers every
// console command. A nil gpio selects the driver registered with
// SetGPIODriver. eeprom may be nil.
func NewFirmware(clock Clock, gpio GPIODriver, eeprom PersistentStore, version string) (*Firmware, error) {
	if gpio == nil {
		gpio = MustGPIO()
	}
	right, err := NewActuator(gpio, PinHapticRight)
	if err != nil {
		return nil, fmt.Errorf("right haptic: %w", err)
	}
	left, err := NewActuator(gpio, PinHapticLeft)
	if err != nil {
		return nil, fmt.Errorf("left haptic: %w", err)
	}

	timer := NewPulseTimer(clock)
	seq := NewNoteSequencer(timer, right, left)
	engine := NewJingleEngine(NewJingleStore(JingleDataMaxBytes), seq)

	reg := NewCommandRegistry()
	InitCoreCommands(reg, version)
	RegisterHapticCommands(reg, seq)
	RegisterJingleCommands(reg, engine, eeprom)
	if eeprom != nil {
		RegisterEEPROMCommands(reg, eeprom)
	}

	return &Firmware{
		Timer:     timer,
		Sequencer: seq,
		Engine:    engine,
		EEPROM:    eeprom,
		Commands:  reg,
	}, nil
}

// LoadJingleData applies the boot policy: the EEPROM copy when it is
// valid, the factory jingles otherwise. The EEPROM error, if any, is
// returned alongside the source actually used.
func (f *Firmware) LoadJingleData() (JingleSource, error) {
	var loadErr error
	if f.EEPROM != nil {
		loadErr = f.Engine.Load(f.EEPROM)
		if loadErr == nil {
			return JingleSourceEEPROM, nil
		}
	} else {
		loadErr = errNoEEPROM
	}

	if err := f.Engine.LoadDefaults(); err != nil {
		return JingleSourceDefaults, errors.Join(loadErr, err)
	}
	return JingleSourceDefaults, loadErr
}
