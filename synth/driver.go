package synth

import "errors"

// ErrQueueFull is returned when a command cannot be queued because the audio
// thread has not consumed the earlier ones.
var ErrQueueFull = errors.New("command queue full")

// Driver runs a set of synths block by block and applies control commands
// between blocks, on the same goroutine that renders. This keeps Set and Run
// serialized without any locking in the render path.
type Driver struct {
	world    *World
	synths   []*Synth
	commands chan func()
}

// NewDriver returns a driver for the synths, queueing at most capacity
// commands between two blocks.
func NewDriver(w *World, capacity int, synths ...*Synth) *Driver {
	return &Driver{world: w, synths: synths, commands: make(chan func(), capacity)}
}

// Send queues a command to run before the next block. It never blocks.
func (d *Driver) Send(cmd func()) error {
	select {
	case d.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Set queues a Set of a control slot of s.
func (d *Driver) Set(s *Synth, slot int, value float32) error {
	return d.Send(func() { s.Set(slot, value) })
}

// SetRunning queues pausing or resuming s.
func (d *Driver) SetRunning(s *Synth, running bool) error {
	return d.Send(func() { s.SetRunning(running) })
}

func (d *Driver) drain() {
	for {
		select {
		case cmd := <-d.commands:
			cmd()
		default:
			return
		}
	}
}

// ReadBlock implements nova.BlockSource. The length of buffer must be a
// multiple of BlockSize*OutputChannels.
func (d *Driver) ReadBlock(buffer []float32) {
	frameSize := d.world.Config.BlockSize * d.world.Config.OutputChannels
	for len(buffer) >= frameSize {
		d.drain()
		RenderBlock(d.world, d.synths, buffer[:frameSize])
		buffer = buffer[frameSize:]
	}
}
