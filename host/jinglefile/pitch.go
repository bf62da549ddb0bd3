package jinglefile

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// C0 in Hz, the root of the scientific pitch scale
const c0Freq = 16.35

// Semitones above C within an octave
var stepOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var noteName = regexp.MustCompile(`^([A-Ga-g])([#b]*)(-?\d+)$`)

// NoteFrequency returns the frequency of a note in scientific pitch
// notation such as "A4", "C#5" or "Bb3"
func NoteFrequency(name string) (float64, error) {
	m := noteName.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, fmt.Errorf("invalid note name %q", name)
	}
	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in %q: %w", name, err)
	}

	halfSteps := octave*12 + stepOffsets[strings.ToUpper(m[1])[0]]
	for _, c := range m[2] {
		if c == '#' {
			halfSteps++
		} else {
			halfSteps--
		}
	}
	return c0Freq * math.Pow(2, float64(halfSteps)/12), nil
}
