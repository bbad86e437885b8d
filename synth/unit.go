package synth

import (
	"fmt"

	"github.com/novasynth/nova"
)

type (
	// Unit is a live unit generator bound to one instance. Process computes n
	// samples of output; Rate decides in which passes it is called.
	//
	// Process is called on the real-time path: it must not block, allocate
	// or lock.
	Unit interface {
		Rate() nova.CalcRate
		Process(n int)
	}

	// WireSource is implemented by units whose outputs can be read by later
	// units of the graph.
	WireSource interface {
		Output(i int) *Wire
	}

	// UnitFactory builds the live units of an instance and releases them.
	// AllocateUnit gets the instance under construction, which already has
	// its controls, constant wires, signal buffers and all the earlier units
	// in place.
	UnitFactory interface {
		AllocateUnit(s *Synth, spec nova.UnitSpec) (Unit, error)
		FreeUnit(u Unit)
	}

	// unitHandle is an entry of the dispatch table of an instance.
	unitHandle struct {
		rate      nova.CalcRate
		bufLength int
		unit      Unit
	}
)

// Input resolves an input of a unit to the wire it reads: a constant wire of
// the instance or an output wire of an earlier unit.
func (s *Synth) Input(in nova.InputSpec) (*Wire, error) {
	if in.IsConstant() {
		if in.Output < 0 || in.Output >= len(s.wires) {
			return nil, fmt.Errorf("constant %d out of range [0, %d)", in.Output, len(s.wires))
		}
		return &s.wires[in.Output], nil
	}
	if in.Unit >= len(s.units) {
		return nil, fmt.Errorf("unit %d is not constructed yet", in.Unit)
	}
	src, ok := s.units[in.Unit].unit.(WireSource)
	if !ok {
		return nil, fmt.Errorf("unit %d has no readable outputs", in.Unit)
	}
	w := src.Output(in.Output)
	if w == nil {
		return nil, fmt.Errorf("unit %d has no output %d", in.Unit, in.Output)
	}
	return w, nil
}

// Unit returns the i-th live unit, in graph order.
func (s *Synth) Unit(i int) Unit {
	return s.units[i].unit
}

// NumUnits returns the number of live units.
func (s *Synth) NumUnits() int {
	return len(s.units)
}
