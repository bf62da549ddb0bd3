package jinglefile

import (
	"errors"
	"fmt"
	"math"

	"scjingle/core"
)

var ErrNote = errors.New("invalid note")

func (f *File) bpm(d JingleDef) float64 {
	switch {
	case d.BPM > 0:
		return d.BPM
	case f.BPM > 0:
		return f.BPM
	}
	return DefaultBPM
}

func (f *File) intensity(d JingleDef) uint8 {
	switch {
	case d.Intensity > 0:
		return d.Intensity
	case f.Intensity > 0:
		return f.Intensity
	}
	return DefaultIntensity
}

func (f *File) octaveAdjust() float64 {
	if f.OctaveAdjust > 0 {
		return f.OctaveAdjust
	}
	return 1
}

func label(i int, d JingleDef) string {
	if d.Name != "" {
		return fmt.Sprintf("jingle %d (%s)", i, d.Name)
	}
	return fmt.Sprintf("jingle %d", i)
}

// Convert turns every jingle of the file into notes
func (f *File) Convert() ([]core.Jingle, error) {
	out := make([]core.Jingle, 0, len(f.Jingles))
	for i, d := range f.Jingles {
		j, err := f.Jingle(d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label(i, d), err)
		}
		out = append(out, j)
	}
	return out, nil
}

// Jingle converts one jingle definition
func (f *File) Jingle(d JingleDef) (core.Jingle, error) {
	right, err := f.notes(d, d.Right)
	if err != nil {
		return core.Jingle{}, fmt.Errorf("right: %w", err)
	}
	left, err := f.notes(d, d.Left)
	if err != nil {
		return core.Jingle{}, fmt.Errorf("left: %w", err)
	}
	if len(right) > math.MaxUint16 || len(left) > math.MaxUint16 {
		return core.Jingle{}, fmt.Errorf("%w: too many notes", ErrNote)
	}
	return core.Jingle{Right: right, Left: left}, nil
}

// notes converts one haptic's note list. Tied notes of the same pitch are
// merged and trailing rests dropped.
func (f *File) notes(d JingleDef, defs []NoteDef) ([]core.Note, error) {
	var out []core.Note
	tied := false
	for i, nd := range defs {
		n, err := f.note(d, nd)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}

		if tied && len(out) > 0 {
			last := &out[len(out)-1]
			if last.PulseFreq == n.PulseFreq && last.DutyCycle == n.DutyCycle {
				total := uint32(last.Duration) + uint32(n.Duration)
				if total > math.MaxUint16 {
					return nil, fmt.Errorf("note %d: %w: tied length %d ms exceeds %d", i, ErrNote, total, math.MaxUint16)
				}
				last.Duration = uint16(total)
				tied = nd.Tie
				continue
			}
		}
		out = append(out, n)
		tied = nd.Tie
	}

	for len(out) > 0 && out[len(out)-1].IsDelay() {
		out = out[:len(out)-1]
	}
	return out, nil
}

// note converts a single definition. Named notes are scaled by the file's
// octave adjust, explicit frequencies are used as given.
func (f *File) note(d JingleDef, nd NoteDef) (core.Note, error) {
	pitches := 0
	for _, set := range []bool{nd.Note != "", nd.Freq != 0, nd.Rest} {
		if set {
			pitches++
		}
	}
	if pitches != 1 {
		return core.Note{}, fmt.Errorf("%w: exactly one of note, freq or rest must be given", ErrNote)
	}

	var ms float64
	switch {
	case nd.Ms > 0 && nd.Beats > 0:
		return core.Note{}, fmt.Errorf("%w: both beats and ms given", ErrNote)
	case nd.Ms > 0:
		ms = float64(nd.Ms)
	case nd.Beats > 0:
		ms = math.Round(nd.Beats * 60 * 1000 / f.bpm(d))
	default:
		return core.Note{}, fmt.Errorf("%w: no length given", ErrNote)
	}
	if ms > math.MaxUint16 {
		return core.Note{}, fmt.Errorf("%w: length %.0f ms exceeds %d", ErrNote, ms, math.MaxUint16)
	}
	n := core.Note{Duration: uint16(ms)}
	if nd.Rest {
		return n, nil
	}

	freq := float64(nd.Freq)
	if nd.Note != "" {
		hz, err := NoteFrequency(nd.Note)
		if err != nil {
			return core.Note{}, fmt.Errorf("%w: %w", ErrNote, err)
		}
		freq = math.Trunc(hz * f.octaveAdjust())
	}
	if freq < 1 || freq > math.MaxUint16 {
		return core.Note{}, fmt.Errorf("%w: frequency %.0f Hz out of range", ErrNote, freq)
	}
	n.PulseFreq = uint16(freq)

	n.DutyCycle = nd.Duty
	if n.DutyCycle == 0 {
		n.DutyCycle = f.intensity(d)
	}
	return n, nil
}

// Image builds Jingle Data holding every jingle of the file, in order.
// capacity 0 selects the controller's arena size.
func (f *File) Image(capacity int) (*core.JingleStore, error) {
	jingles, err := f.Convert()
	if err != nil {
		return nil, err
	}
	store := core.NewJingleStore(capacity)
	for i, j := range jingles {
		if _, err := store.AppendJingle(j); err != nil {
			return nil, fmt.Errorf("%s: %w", label(i, f.Jingles[i]), err)
		}
	}
	return store, nil
}

// FromJingles describes jingles by frequency and milliseconds, for data
// read back from a controller. Zero length notes are left out since they
// never play.
func FromJingles(jingles []core.Jingle) *File {
	f := &File{BPM: DefaultBPM, Intensity: DefaultIntensity}
	for _, j := range jingles {
		f.Jingles = append(f.Jingles, JingleDef{
			Right: noteDefs(j.Right),
			Left:  noteDefs(j.Left),
		})
	}
	return f
}

func noteDefs(notes []core.Note) []NoteDef {
	defs := make([]NoteDef, 0, len(notes))
	for _, n := range notes {
		if n.Duration == 0 {
			continue
		}
		if n.IsDelay() {
			defs = append(defs, NoteDef{Rest: true, Ms: n.Duration})
			continue
		}
		defs = append(defs, NoteDef{Freq: n.PulseFreq, Ms: n.Duration, Duty: n.DutyCycle})
	}
	return defs
}
