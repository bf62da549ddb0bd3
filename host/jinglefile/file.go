// Package jinglefile reads jingle descriptions written in YAML or TOML and
// turns them into Jingle Data.
//
// A file sets the tempo and note intensity and lists jingles, each with a
// note list per haptic. A note is given either by name ("C#5") or by
// frequency in Hz, and lasts a number of beats or milliseconds:
//
//	bpm: 120
//	intensity: 128
//	jingles:
//	  - name: startup
//	    right:
//	      - {note: C5, beats: 0.5}
//	      - {note: G5, beats: 0.5, tie: true}
//	      - {note: G5, beats: 1}
//	      - {rest: true, beats: 1}
//	    left:
//	      - {freq: 220, ms: 250, duty: 200}
package jinglefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Defaults applied to fields left at zero
const (
	DefaultBPM       = 120
	DefaultIntensity = 128
)

var ErrFormat = errors.New("unsupported jingle file format")

// File is a parsed jingle file
type File struct {
	BPM          float64     `yaml:"bpm" toml:"bpm"`
	Intensity    uint8       `yaml:"intensity" toml:"intensity"`
	OctaveAdjust float64     `yaml:"octave_adjust" toml:"octave_adjust"`
	Jingles      []JingleDef `yaml:"jingles" toml:"jingles"`
}

// JingleDef describes one jingle. BPM and Intensity override the file
// values when set.
type JingleDef struct {
	Name      string    `yaml:"name,omitempty" toml:"name,omitempty"`
	BPM       float64   `yaml:"bpm,omitempty" toml:"bpm,omitempty"`
	Intensity uint8     `yaml:"intensity,omitempty" toml:"intensity,omitempty"`
	Right     []NoteDef `yaml:"right" toml:"right"`
	Left      []NoteDef `yaml:"left" toml:"left"`
}

// NoteDef is one note or rest. Exactly one of Note, Freq and Rest selects
// the pitch and one of Beats and Ms the length. Tie joins the note with the
// following one when both have the same pitch.
type NoteDef struct {
	Note  string  `yaml:"note,omitempty" toml:"note,omitempty"`
	Freq  uint16  `yaml:"freq,omitempty" toml:"freq,omitempty"`
	Rest  bool    `yaml:"rest,omitempty" toml:"rest,omitempty"`
	Beats float64 `yaml:"beats,omitempty" toml:"beats,omitempty"`
	Ms    uint16  `yaml:"ms,omitempty" toml:"ms,omitempty"`
	Duty  uint8   `yaml:"duty,omitempty" toml:"duty,omitempty"`
	Tie   bool    `yaml:"tie,omitempty" toml:"tie,omitempty"`
}

// Format names a file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrFormat, path)
}

// Parse decodes data in the given format
func Parse(data []byte, format Format) (*File, error) {
	f := &File{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, f)
	case FormatTOML:
		err = toml.Unmarshal(data, f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return f, nil
}

// Load reads and parses a jingle file, choosing the format by extension
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Marshal encodes f in the given format
func (f *File) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatTOML:
		return toml.Marshal(f)
	}
	return nil, fmt.Errorf("%w: %q", ErrFormat, format)
}
