package core

import (
	"encoding/binary"
	"fmt"
	"io"
)

const hapticUsage = `usage: haptic {hapticId} {dutyCycle} {frequency} {duration}
       haptic stop [{hapticId}]
       haptic trace

hapticId = "right" or "left" to specify which haptic
dutyCycle = 0-255 for the fraction of each pulse spent high (255 is ~50%)
frequency = frequency of the pulse train in Hz
duration = duration of the note in ms
stop = silence one or both haptics
trace = dump the recent haptic timing events
`

const eepromUsage = `usage: eeprom read {wordSize} {address} {numWords}

wordSize = read size of 8, 16 or 32 bit words
address = EEPROM address to start reading at
numWords = number of words to read
`

// RegisterHapticCommands adds the "haptic" command
func RegisterHapticCommands(r *CommandRegistry, seq *NoteSequencer) {
	r.Register("haptic", hapticUsage, func(args []string, out io.Writer) error {
		return handleHaptic(seq, args, out)
	})
}

func handleHaptic(seq *NoteSequencer, args []string, out io.Writer) error {
	if len(args) < 2 {
		return ErrUsage
	}

	switch args[1] {
	case "stop":
		switch len(args) {
		case 2:
			for h := HapticRight; h < HapticCount; h++ {
				seq.Stop(h)
			}
		case 3:
			h, err := ParseHaptic(args[2])
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBadArgument, err)
			}
			seq.Stop(h)
		default:
			return ErrUsage
		}
		return nil

	case "trace":
		if len(args) != 2 {
			return ErrUsage
		}
		DumpTimingRing(func(s string) {
			io.WriteString(out, s+"\n")
		})
		return nil
	}

	if len(args) != 5 {
		return ErrUsage
	}
	note, err := parseNote(args[2], args[3], args[4])
	if err != nil {
		return err
	}
	h, err := ParseHaptic(args[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadArgument, err)
	}
	if err := seq.Play(h, NewNoteSequence(note)); err != nil {
		return fmt.Errorf("failed to play note: %w", err)
	}
	return nil
}

// RegisterEEPROMCommands adds the "eeprom" command
func RegisterEEPROMCommands(r *CommandRegistry, eeprom PersistentStore) {
	r.Register("eeprom", eepromUsage, func(args []string, out io.Writer) error {
		return handleEEPROM(eeprom, args, out)
	})
}

func handleEEPROM(eeprom PersistentStore, args []string, out io.Writer) error {
	if len(args) != 5 || args[1] != "read" {
		return ErrUsage
	}
	if eeprom == nil {
		return errNoEEPROM
	}

	wordSize, err := parseUint(args[2], "wordSize", 32)
	if err != nil {
		return err
	}
	if wordSize != 8 && wordSize != 16 && wordSize != 32 {
		return fmt.Errorf("%w: invalid word size %d", ErrBadArgument, wordSize)
	}
	size := uint64(eeprom.Size())
	addr, err := parseUint(args[3], "address", size-1)
	if err != nil {
		return err
	}
	numWords, err := parseUint(args[4], "numWords", size)
	if err != nil {
		return err
	}
	bytesPerWord := wordSize / 8
	if addr+numWords*bytesPerWord > size {
		return fmt.Errorf("%w: read of %d words from 0x%x exceeds EEPROM size of 0x%x", ErrBadArgument, numWords, addr, size)
	}

	buf := make([]byte, numWords*bytesPerWord)
	if _, err := eeprom.ReadAt(buf, int64(addr)); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageIO, err)
	}

	fmt.Fprintf(out, "Reading %d %d-bit words starting at 0x%X from EEPROM\n", numWords, wordSize, addr)
	for i := uint64(0); i < numWords; i++ {
		if i%8 == 0 {
			if i > 0 {
				io.WriteString(out, "\n")
			}
			fmt.Fprintf(out, "%03X: ", addr+i*bytesPerWord)
		}
		word := buf[i*bytesPerWord:]
		switch wordSize {
		case 8:
			fmt.Fprintf(out, "%02X ", word[0])
		case 16:
			fmt.Fprintf(out, "%04X ", binary.LittleEndian.Uint16(word))
		case 32:
			fmt.Fprintf(out, "%08X ", binary.LittleEndian.Uint32(word))
		}
	}
	io.WriteString(out, "\n")
	return nil
}
