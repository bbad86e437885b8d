package synth

import "github.com/novasynth/nova"

// Wire is a signal as seen by the inputs of units. A wire is either backed by
// a signal buffer written by its producing unit, or carries a single scalar
// value; constants are wires with no producer and no buffer.
type Wire struct {
	FromUnit    int // index of the producing unit, -1 for none
	CalcRate    nova.CalcRate
	Buffer      int // signal buffer index, -1 for none
	ScalarValue float32
}

// ConstantWire returns the wire of a constant.
func ConstantWire(value float32) Wire {
	return Wire{FromUnit: -1, CalcRate: nova.CalcScalar, Buffer: -1, ScalarValue: value}
}

// IsConstant tells if the wire has no producing unit.
func (w *Wire) IsConstant() bool {
	return w.FromUnit < 0
}
