// Package ugens is a small library of unit generators and the unit factory
// that builds them for the synth engine.
package ugens

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/novasynth/nova"
	"github.com/novasynth/nova/synth"
)

// ErrUnknownUnit is returned when a graph uses a unit kind the factory does
// not know.
var ErrUnknownUnit = errors.New("unknown unit generator")

type (
	// Type documents a unit kind: the names of its inputs, the rates it can
	// run at and how many outputs it has.
	Type struct {
		Inputs  []string
		Rates   []nova.CalcRate
		Outputs int // -1 for a variable number of outputs
		new     func(b *base, spec nova.UnitSpec) (synth.Unit, error)
	}

	// Factory builds the units listed in Types. It implements
	// synth.UnitFactory.
	Factory struct{}

	// base is embedded by all the units: it holds the bound inputs and
	// outputs and the memory reserved for the unit.
	base struct {
		synth     *synth.Synth
		rate      nova.CalcRate
		inputs    []input
		outputs   []synth.Wire
		outBufs   [][]float32
		allocator synth.Allocator
		size      int
	}

	// input is a bound input: audio rate wires are read from their buffer,
	// everything else from the scalar value of the wire.
	input struct {
		wire *synth.Wire
		buf  []float32
	}
)

// Types lists the built-in unit kinds.
var Types = map[string]Type{
	"Control": {
		Rates:   []nova.CalcRate{nova.CalcScalar, nova.CalcBuffer, nova.CalcAudio},
		Outputs: -1,
		new:     newControl,
	},
	"SinOsc": {
		Inputs:  []string{"freq", "phase"},
		Rates:   []nova.CalcRate{nova.CalcBuffer, nova.CalcAudio},
		Outputs: 1,
		new:     newSinOsc,
	},
	"WhiteNoise": {
		Rates:   []nova.CalcRate{nova.CalcBuffer, nova.CalcAudio},
		Outputs: 1,
		new:     newWhiteNoise,
	},
	"DC": {
		Inputs:  []string{"in"},
		Rates:   []nova.CalcRate{nova.CalcScalar, nova.CalcBuffer, nova.CalcAudio},
		Outputs: 1,
		new:     newDC,
	},
	"BinaryOpUGen": {
		Inputs:  []string{"a", "b"},
		Rates:   []nova.CalcRate{nova.CalcScalar, nova.CalcBuffer, nova.CalcAudio},
		Outputs: 1,
		new:     newBinaryOp,
	},
	"MulAdd": {
		Inputs:  []string{"in", "mul", "add"},
		Rates:   []nova.CalcRate{nova.CalcScalar, nova.CalcBuffer, nova.CalcAudio},
		Outputs: 1,
		new:     newMulAdd,
	},
	"Out": {
		Inputs:  []string{"bus", "channelsArray"},
		Rates:   []nova.CalcRate{nova.CalcAudio},
		Outputs: 0,
		new:     newOut,
	},
}

func (t Type) supportsRate(r nova.CalcRate) bool {
	for _, v := range t.Rates {
		if v == r {
			return true
		}
	}
	return false
}

// unitSize is the memory a unit reserves from the allocator: the unit itself
// and its output wires.
func unitSize(spec nova.UnitSpec) int {
	return int(unsafe.Sizeof(base{})) + len(spec.Outputs)*int(unsafe.Sizeof(synth.Wire{})) + len(spec.Inputs)*int(unsafe.Sizeof(input{}))
}

func (Factory) AllocateUnit(s *synth.Synth, spec nova.UnitSpec) (synth.Unit, error) {
	t, ok := Types[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownUnit, spec.Name)
	}
	if !t.supportsRate(spec.Rate) {
		return nil, fmt.Errorf("%v cannot run at %v rate", spec.Name, spec.Rate)
	}
	if len(spec.Inputs) < len(t.Inputs) {
		return nil, fmt.Errorf("%v needs %d inputs, got %d", spec.Name, len(t.Inputs), len(spec.Inputs))
	}
	if t.Outputs >= 0 && len(spec.Outputs) != t.Outputs {
		return nil, fmt.Errorf("%v has %d outputs, got %d", spec.Name, t.Outputs, len(spec.Outputs))
	}
	b := &base{
		synth:     s,
		rate:      spec.Rate,
		inputs:    make([]input, len(spec.Inputs)),
		outputs:   make([]synth.Wire, len(spec.Outputs)),
		outBufs:   make([][]float32, len(spec.Outputs)),
		allocator: s.World().Allocator(),
		size:      unitSize(spec),
	}
	for i, in := range spec.Inputs {
		w, err := s.Input(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		b.inputs[i].wire = w
		if w.CalcRate == nova.CalcAudio && w.Buffer >= 0 {
			b.inputs[i].buf = s.Buffer(w.Buffer)
		}
	}
	index := s.NumUnits()
	for i, out := range spec.Outputs {
		b.outputs[i] = synth.Wire{FromUnit: index, CalcRate: out.Rate, Buffer: -1}
		if out.Rate == nova.CalcAudio {
			if spec.Rate != nova.CalcAudio {
				return nil, fmt.Errorf("output %d is audio rate, but the unit runs at %v rate", i, spec.Rate)
			}
			if out.Buffer < 0 || out.Buffer >= s.Def().BufferCount {
				return nil, fmt.Errorf("output %d uses buffer %d, but the synth has %d buffers", i, out.Buffer, s.Def().BufferCount)
			}
			b.outputs[i].Buffer = out.Buffer
			b.outBufs[i] = s.Buffer(out.Buffer)
		}
	}
	if err := b.allocator.Allocate(b.size); err != nil {
		return nil, err
	}
	u, err := t.new(b, spec)
	if err != nil {
		b.allocator.Free(b.size)
		return nil, err
	}
	if spec.Rate == nova.CalcScalar {
		u.Process(1)
	}
	return u, nil
}

type releaser interface {
	release()
}

func (Factory) FreeUnit(u synth.Unit) {
	if r, ok := u.(releaser); ok {
		r.release()
	}
}

func (b *base) release() {
	b.allocator.Free(b.size)
}

func (b *base) Rate() nova.CalcRate { return b.rate }

func (b *base) Output(i int) *synth.Wire {
	if i < 0 || i >= len(b.outputs) {
		return nil
	}
	return &b.outputs[i]
}

// timing returns the rate constants the unit runs with.
func (b *base) timing() nova.Rate {
	if b.rate == nova.CalcAudio {
		return b.synth.World().FullRate
	}
	return b.synth.World().BufRate
}

// set writes a single value to the first output, filling the whole buffer of
// an audio rate output.
func (b *base) set(v float32, n int) {
	if buf := b.outBufs[0]; buf != nil {
		for i := range buf[:n] {
			buf[i] = v
		}
		return
	}
	b.outputs[0].ScalarValue = v
}

func (in *input) value() float32 {
	return in.wire.ScalarValue
}

func (in *input) audio() bool {
	return in.buf != nil
}

func (in *input) at(i int) float32 {
	if in.buf != nil {
		return in.buf[i]
	}
	return in.wire.ScalarValue
}
