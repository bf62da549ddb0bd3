package sim

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"scjingle/core"
)

// ErrNoAudio is returned by NewPlayer in builds without an audio backend
var ErrNoAudio = errors.New("audio output not available in this build")

// StreamLatencyUS is how far a Stream trails the simulated clock. Edges
// reach the stream once per Device tick, so the renderer has to stay
// behind them.
const StreamLatencyUS = 100000

// Stream is an endless io.Reader of float32 little endian stereo frames
// rendered from edges pushed by a running Device
type Stream struct {
	mu      sync.Mutex
	r       *Renderer
	samples []float32
}

// NewStream starts a stream trailing tick now by StreamLatencyUS
func NewStream(sampleRate int, now uint32) *Stream {
	return &Stream{r: NewRenderer(sampleRate, now-core.TimerFromUS(StreamLatencyUS))}
}

// Push queues edges. It matches EdgeSink.
func (s *Stream) Push(edges []core.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Push(edges...)
}

func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / (4 * Channels)
	if frames == 0 {
		return 0, nil
	}
	n := frames * Channels
	if cap(s.samples) < n {
		s.samples = make([]float32, n)
	}
	samples := s.samples[:n]

	s.mu.Lock()
	s.r.Render(samples)
	s.mu.Unlock()

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}
