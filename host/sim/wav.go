package sim

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth = 16
	wavPCM      = 1
)

var ErrNotWAV = errors.New("not a WAV file")

// WriteWAV encodes interleaved stereo samples in [-1, 1] as 16 bit PCM
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, Channels, wavPCM)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(float64(clamp(s)) * math.MaxInt16))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}

// ReadWAV decodes a 16 bit PCM file written by WriteWAV
func ReadWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, ErrNotWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format.NumChannels != Channels {
		return nil, 0, fmt.Errorf("%w: %d channels", ErrNotWAV, buf.Format.NumChannels)
	}
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v) / math.MaxInt16
	}
	return out, buf.Format.SampleRate, nil
}

func clamp(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}
