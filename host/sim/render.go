package sim

import (
	"encoding/binary"
	"io"
	"math"

	"scjingle/core"
)

// Stereo frame layout of rendered audio: left haptic on the left channel
const (
	Channels     = 2
	chanLeft     = 0
	chanRight    = 1
	DefaultRate  = 48000
	defaultLevel = 0.5
)

func channelOf(pin core.GPIOPin) (int, bool) {
	switch pin {
	case core.PinHapticLeft:
		return chanLeft, true
	case core.PinHapticRight:
		return chanRight, true
	}
	return 0, false
}

// dcBlocker is a one pole high-pass removing the offset of the pulse train
type dcBlocker struct {
	x, y float32
}

func (d *dcBlocker) step(x float32) float32 {
	d.y = x - d.x + 0.995*d.y
	d.x = x
	return d.y
}

// Renderer converts haptic edges into interleaved float32 stereo samples.
// The pulse trains that drive the actuators are audible as they are, so
// the output is the actuator drive level with its DC offset removed.
type Renderer struct {
	rate    int
	level   float32
	cursor  float64 // timer ticks
	step    float64
	high    [Channels]bool
	filters [Channels]dcBlocker
	pending []core.Edge
}

// NewRenderer starts rendering at timer tick start
func NewRenderer(sampleRate int, start uint32) *Renderer {
	if sampleRate <= 0 {
		sampleRate = DefaultRate
	}
	return &Renderer{
		rate:   sampleRate,
		level:  defaultLevel,
		cursor: float64(start),
		step:   float64(core.TimerFreq) / float64(sampleRate),
	}
}

// SampleRate returns the output rate in Hz
func (r *Renderer) SampleRate() int {
	return r.rate
}

// Cursor returns the timer tick of the next frame
func (r *Renderer) Cursor() uint32 {
	return uint32(int64(r.cursor))
}

// Push queues edges in tick order
func (r *Renderer) Push(edges ...core.Edge) {
	r.pending = append(r.pending, edges...)
}

// Render fills dst with whole frames and advances the cursor
func (r *Renderer) Render(dst []float32) {
	for i := 0; i+Channels <= len(dst); i += Channels {
		now := uint32(int64(r.cursor))
		for len(r.pending) > 0 && int32(r.pending[0].Tick-now) <= 0 {
			e := r.pending[0]
			r.pending = r.pending[1:]
			if ch, ok := channelOf(e.Pin); ok {
				r.high[ch] = e.High
			}
		}
		for ch := 0; ch < Channels; ch++ {
			var x float32
			if r.high[ch] {
				x = r.level
			}
			dst[i+ch] = r.filters[ch].step(x)
		}
		r.cursor += r.step
	}
}

// RenderEdges renders us microseconds of edges starting at tick start
func RenderEdges(edges []core.Edge, start, us uint32, sampleRate int) []float32 {
	r := NewRenderer(sampleRate, start)
	r.Push(edges...)
	frames := int(math.Ceil(float64(us) * float64(r.rate) / 1e6))
	out := make([]float32, frames*Channels)
	r.Render(out)
	return out
}

// PCMReader streams float32 samples as little endian bytes, the layout
// the audio backends consume
type PCMReader struct {
	samples []float32
}

// NewPCMReader wraps rendered samples
func NewPCMReader(samples []float32) *PCMReader {
	return &PCMReader{samples: samples}
}

func (p *PCMReader) Read(b []byte) (int, error) {
	if len(p.samples) == 0 {
		return 0, io.EOF
	}
	n := 0
	for n+4 <= len(b) && len(p.samples) > 0 {
		binary.LittleEndian.PutUint32(b[n:], math.Float32bits(p.samples[0]))
		p.samples = p.samples[1:]
		n += 4
	}
	return n, nil
}
