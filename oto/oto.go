// Package oto plays the output of the engine on the default audio device.
package oto

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ebitengine/oto/v3"
	"github.com/novasynth/nova"
)

// Context is an audio output device opened with the sample rate and channel
// count of an engine configuration. It implements nova.AudioContext.
type Context struct {
	ctx       *oto.Context
	blockSize int
	channels  int
}

// Player streams blocks from a source to the device.
type Player struct {
	player *oto.Player
}

// blockReader adapts a nova.BlockSource to the io.Reader oto pulls
// little-endian float32 samples from.
type blockReader struct {
	source nova.BlockSource
	block  []float32
	pos    int
}

// NewContext opens the default audio device for the configuration.
func NewContext(cfg nova.Config) (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(cfg.SampleRate),
		ChannelCount: cfg.OutputChannels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx, blockSize: cfg.BlockSize, channels: cfg.OutputChannels}, nil
}

// Play starts pulling blocks from source. The source is read from the
// goroutine of the audio device.
func (c *Context) Play(source nova.BlockSource) (nova.AudioPlayer, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, fmt.Errorf("oto context failed: %w", err)
	}
	p := c.ctx.NewPlayer(newBlockReader(source, c.blockSize*c.channels))
	p.Play()
	return &Player{player: p}, nil
}

func (c *Context) Close() error {
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (p *Player) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func newBlockReader(source nova.BlockSource, frameSize int) *blockReader {
	return &blockReader{source: source, block: make([]float32, frameSize), pos: frameSize}
}

// Read fills p with whole samples, rendering a new block whenever the
// previous one has been consumed.
func (r *blockReader) Read(p []byte) (int, error) {
	n := 0
	for len(p)-n >= 4 {
		if r.pos == len(r.block) {
			r.source.ReadBlock(r.block)
			r.pos = 0
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(r.block[r.pos]))
		r.pos++
		n += 4
	}
	return n, nil
}
