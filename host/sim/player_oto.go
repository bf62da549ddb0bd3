//go:build !headless

package sim

import (
	"context"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player sends rendered audio to the default output device
type Player struct {
	ctx  *oto.Context
	rate int
}

// NewPlayer opens the audio device for float32 stereo at sampleRate
func NewPlayer(sampleRate int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   20 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &Player{ctx: ctx, rate: sampleRate}, nil
}

// SampleRate returns the output rate in Hz
func (p *Player) SampleRate() int {
	return p.rate
}

// Play streams r until it is exhausted or ctx is done
func (p *Player) Play(ctx context.Context, r io.Reader) error {
	player := p.ctx.NewPlayer(r)
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return p.ctx.Err()
}

func (p *Player) Close() error {
	return p.ctx.Suspend()
}
