package oto

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/octark/octark"
)

// OtoContext wraps the oto audio drivers as an octark.AudioContext.
type OtoContext struct {
	context *oto.Context
}

// NewContext initializes the audio drivers for 44100 Hz stereo 16-bit
// output and waits until they are ready to play.
func NewContext() (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   44100,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

// Play starts playing the stream r, which has to contain interleaved 16-bit
// little endian stereo samples, and returns without blocking.
func (c *OtoContext) Play(r io.Reader) octark.CloserWaiter {
	player := c.context.NewPlayer(r)
	player.Play()
	return &otoPlayer{player: player}
}

// Close is a no-op, as the underlying context cannot be closed; it exists to
// satisfy octark.AudioContext.
func (c *OtoContext) Close() error { return nil }

type otoPlayer struct {
	player *oto.Player
}

// Wait blocks until the player has played its whole stream. The underlying
// player has no completion signal, so this polls.
func (o *otoPlayer) Wait() {
	for o.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}

func (o *otoPlayer) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
