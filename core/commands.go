package core

import (
	"fmt"
	"io"
	"strconv"
)

const helpUsage = `usage: help [{command}]

Print the list of commands, or the usage of one command
`

// InitCoreCommands registers the commands every console has
func InitCoreCommands(r *CommandRegistry, version string) {
	r.Register("help", helpUsage, func(args []string, out io.Writer) error {
		return handleHelp(r, args, out)
	})
	r.Register("version", "usage: version\n", func(args []string, out io.Writer) error {
		fmt.Fprintf(out, "%s\n", version)
		return nil
	})
	r.Register("uptime", "usage: uptime\n", handleUptime)
}

func handleHelp(r *CommandRegistry, args []string, out io.Writer) error {
	switch len(args) {
	case 1:
		io.WriteString(out, "Commands:\n")
		io.WriteString(out, r.GetDictionary())
		return nil
	case 2:
		cmd, ok := r.Lookup(args[1])
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, args[1])
		}
		io.WriteString(out, cmd.Usage)
		return nil
	}
	return ErrUsage
}

func handleUptime(args []string, out io.Writer) error {
	if len(args) != 1 {
		return ErrUsage
	}
	fmt.Fprintf(out, "%d ms\n", TimerToUS(GetUptime())/1000)
	return nil
}

// parseUint parses a console number in decimal, 0x hex or 0 octal and
// checks it against max.
func parseUint(s, name string, max uint64) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil || v > max {
		return 0, fmt.Errorf("%w: %s must be in range 0 to %d", ErrBadArgument, name, max)
	}
	return v, nil
}

// parseNote parses the duty, frequency and duration arguments shared by
// "haptic" and "jingle note"
func parseNote(duty, freq, dur string) (Note, error) {
	d, err := parseUint(duty, "dutyCycle", 255)
	if err != nil {
		return Note{}, err
	}
	f, err := parseUint(freq, "frequency", 65535)
	if err != nil {
		return Note{}, err
	}
	ms, err := parseUint(dur, "duration", 65535)
	if err != nil {
		return Note{}, err
	}
	return Note{DutyCycle: uint8(d), PulseFreq: uint16(f), Duration: uint16(ms)}, nil
}
