//go:build headless

package sim

import (
	"context"
	"io"
)

type Player struct{}

func NewPlayer(sampleRate int) (*Player, error) {
	return nil, ErrNoAudio
}

func (p *Player) SampleRate() int {
	return 0
}

func (p *Player) Play(ctx context.Context, r io.Reader) error {
	return ErrNoAudio
}

func (p *Player) Close() error {
	return nil
}
