package core

import (
	"errors"
	"fmt"
	"io"
)

const jingleUsage = `usage: jingle play {jingleIdx}
       jingle print [{jingleIdx}]
       jingle clear
       jingle delete {jingleIdx}
       jingle add [{jingleIdx}] {numNotesRight} {numNotesLeft}
       jingle note {jingleIdx} {hapticId} {noteIdx} {dutyCycle} {freq} {dur}
       jingle eeprom {load|save|clear}
       jingle crc
       jingle defaults

play = play the jingle associated with the given jingleIdx
print = print info on all the jingles, or the notes of one jingle
clear = initialize the Jingle Data to have 0 jingles
delete = delete the jingle associated with the given jingleIdx
add = add a new jingle with the given number of notes per haptic.
	Without jingleIdx the jingle is appended.
note = change one note of one jingle. See "haptic" for parameters
eeprom = access the EEPROM copy of the Jingle Data:
	"load"  replace Jingle Data with the EEPROM copy. Invalid
	        EEPROM data leaves the Jingle Data cleared.
	"save"  write the Jingle Data to EEPROM. This persists across
	        firmware updates.
	"clear" erase the EEPROM copy so the defaults are used.
crc = print the CRC16 of the used Jingle Data
defaults = restore the factory jingles
`

// FormatChecksum renders the "jingle crc" response line
func FormatChecksum(crc uint16, used int) string {
	return fmt.Sprintf("Jingle Data CRC = 0x%04x (%d bytes)", crc, used)
}

// FormatJingleAdded renders the "jingle add" success line
func FormatJingleAdded(idx uint8) string {
	return fmt.Sprintf("Jingle %d added successfully.", idx)
}

// Console responses the host tool matches on
const (
	RespNoteUpdated    = "Note updated successfully."
	RespLoadComplete   = "Load complete"
	RespSaveComplete   = "Save complete"
	RespClearComplete  = "Clear complete"
	RespDefaultsLoaded = "Defaults loaded"
)

var errNoEEPROM = errors.New("no EEPROM available")

// RegisterJingleCommands adds the "jingle" command. eeprom may be nil on
// boards without persistent storage.
func RegisterJingleCommands(r *CommandRegistry, e *JingleEngine, eeprom PersistentStore) {
	r.Register("jingle", jingleUsage, func(args []string, out io.Writer) error {
		return handleJingle(e, eeprom, args, out)
	})
}

func handleJingle(e *JingleEngine, eeprom PersistentStore, args []string, out io.Writer) error {
	if len(args) < 2 {
		return ErrUsage
	}
	store := e.Store()
	sub, args := args[1], args[2:]

	switch sub {
	case "play":
		if len(args) != 1 {
			return ErrUsage
		}
		idx, err := parseJingleIdx(store, args[0])
		if err != nil {
			return err
		}
		if err := e.PlayJingle(idx); err != nil {
			return fmt.Errorf("error playing jingle: %w", err)
		}

	case "print":
		switch len(args) {
		case 0:
			printJingleData(store, out)
		case 1:
			idx, err := parseJingleIdx(store, args[0])
			if err != nil {
				return err
			}
			return printJingle(store, idx, out)
		default:
			return ErrUsage
		}

	case "clear":
		if len(args) != 0 {
			return ErrUsage
		}
		return e.Clear()

	case "delete":
		if len(args) != 1 {
			return ErrUsage
		}
		idx, err := parseJingleIdx(store, args[0])
		if err != nil {
			return err
		}
		if err := e.DeleteJingle(idx); err != nil {
			return fmt.Errorf("error deleting jingle: %w", err)
		}
		fmt.Fprintf(out, "Jingle %d deleted successfully.\n", idx)

	case "add":
		idx := store.Count()
		switch len(args) {
		case 2:
		case 3:
			v, err := parseUint(args[0], "jingleIdx", MaxJingles)
			if err != nil {
				return err
			}
			if v > uint64(store.Count()) {
				return fmt.Errorf("%w: jingleIdx must be at most %d", ErrBadIndex, store.Count())
			}
			idx = uint8(v)
			args = args[1:]
		default:
			return ErrUsage
		}
		numRight, err := parseUint(args[0], "numNotesRight", 65535)
		if err != nil {
			return err
		}
		numLeft, err := parseUint(args[1], "numNotesLeft", 65535)
		if err != nil {
			return err
		}
		if err := e.AddJingle(idx, uint16(numRight), uint16(numLeft)); err != nil {
			return fmt.Errorf("error adding jingle: %w", err)
		}
		fmt.Fprintln(out, FormatJingleAdded(idx))

	case "note":
		if len(args) != 6 {
			return ErrUsage
		}
		idx, err := parseJingleIdx(store, args[0])
		if err != nil {
			return err
		}
		h, err := ParseHaptic(args[1])
		if err != nil {
			return fmt.Errorf("%w: invalid hapticId of '%s'", ErrBadArgument, args[1])
		}
		noteIdx, err := parseUint(args[2], "noteIdx", 65535)
		if err != nil {
			return err
		}
		note, err := parseNote(args[3], args[4], args[5])
		if err != nil {
			return err
		}
		numNotes, err := store.NoteCount(h, idx)
		if err != nil {
			return err
		}
		if noteIdx >= uint64(numNotes) {
			return fmt.Errorf("%w: invalid noteIdx of %d. Only %d notes for given channel", ErrBadIndex, noteIdx, numNotes)
		}
		if err := e.SetNote(idx, h, uint16(noteIdx), note); err != nil {
			return err
		}
		fmt.Fprintln(out, RespNoteUpdated)

	case "eeprom":
		if len(args) != 1 {
			return ErrUsage
		}
		if eeprom == nil {
			return errNoEEPROM
		}
		switch args[0] {
		case "load":
			if err := e.Load(eeprom); err != nil {
				return fmt.Errorf("loading from EEPROM failed: %w", err)
			}
			fmt.Fprintln(out, RespLoadComplete)
		case "save":
			if err := e.Save(eeprom); err != nil {
				return fmt.Errorf("saving to EEPROM failed: %w", err)
			}
			fmt.Fprintln(out, RespSaveComplete)
		case "clear":
			if err := e.ClearPersisted(eeprom); err != nil {
				return fmt.Errorf("clearing EEPROM failed: %w", err)
			}
			fmt.Fprintln(out, RespClearComplete)
		default:
			return ErrUsage
		}

	case "crc":
		if len(args) != 0 {
			return ErrUsage
		}
		fmt.Fprintln(out, FormatChecksum(store.Checksum(), store.Capacity()-int(store.BytesFree())))

	case "defaults":
		if len(args) != 0 {
			return ErrUsage
		}
		if err := e.LoadDefaults(); err != nil {
			return err
		}
		fmt.Fprintln(out, RespDefaultsLoaded)

	default:
		return ErrUsage
	}
	return nil
}

func parseJingleIdx(store *JingleStore, s string) (uint8, error) {
	v, err := parseUint(s, "jingleIdx", MaxJingles)
	if err != nil {
		return 0, err
	}
	if v >= uint64(store.Count()) {
		return 0, fmt.Errorf("%w: only %d jingles available", ErrBadIndex, store.Count())
	}
	return uint8(v), nil
}

func printJingleData(store *JingleStore, out io.Writer) {
	fmt.Fprintf(out, "Magic Word = 0x%04x\n", store.Magic())
	fmt.Fprintf(out, "Number of Jingles = %d\n", store.Count())
	for idx := 0; idx < int(store.Count()); idx++ {
		off, err := store.JingleOffset(uint8(idx))
		if err != nil {
			fmt.Fprintf(out, "Jingle[%d] %v\n", idx, err)
			continue
		}
		fmt.Fprintf(out, "Jingle[%d] offset = 0x%03x\n", idx, off)
	}
	fmt.Fprintf(out, "Bytes free in blob = 0x%03x\n", store.BytesFree())
}

func printJingle(store *JingleStore, idx uint8, out io.Writer) error {
	off, err := store.JingleOffset(idx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "offset = 0x%03x\n", off)
	for h := HapticRight; h < HapticCount; h++ {
		seq, err := store.Notes(h, idx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "numNotes %s = %d\n", h, seq.Len())
		for i := 0; i < seq.Len(); i++ {
			n := seq.At(i)
			fmt.Fprintf(out, "%s Note[%d] = 0x%04x, 0x%04x, 0x%04x\n", h, i, n.DutyCycle, n.PulseFreq, n.Duration)
		}
	}
	return nil
}
