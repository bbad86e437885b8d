package ugens

import (
	"fmt"
	"math"

	"github.com/novasynth/nova"
	"github.com/novasynth/nova/synth"
	"github.com/viterin/vek/vek32"
)

// Operators of BinaryOpUGen, selected by SpecialIndex.
const (
	OpAdd = 0
	OpSub = 1
	OpMul = 2
	OpMin = 12
	OpMax = 13
)

// BinaryOp applies a binary operator to its two inputs.
type BinaryOp struct {
	*base
	op int
}

func newBinaryOp(b *base, spec nova.UnitSpec) (synth.Unit, error) {
	switch spec.SpecialIndex {
	case OpAdd, OpSub, OpMul, OpMin, OpMax:
	default:
		return nil, fmt.Errorf("unsupported operator %d", spec.SpecialIndex)
	}
	return &BinaryOp{base: b, op: spec.SpecialIndex}, nil
}

func (o *BinaryOp) scalar(a, b float32) float32 {
	switch o.op {
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpMin:
		return float32(math.Min(float64(a), float64(b)))
	case OpMax:
		return float32(math.Max(float64(a), float64(b)))
	}
	return a + b
}

func (o *BinaryOp) Process(n int) {
	a, b := &o.inputs[0], &o.inputs[1]
	out := o.outBufs[0]
	if out == nil {
		o.outputs[0].ScalarValue = o.scalar(a.value(), b.value())
		return
	}
	out = out[:n]
	switch {
	case a.audio() && b.audio():
		x, y := a.buf[:n], b.buf[:n]
		switch {
		case sameBuffer(x, y):
			for i := range out {
				out[i] = o.scalar(x[i], y[i])
			}
		case sameBuffer(out, y):
			if o.op == OpSub {
				vek32.Sub_Inplace(out, x)
				vek32.MulNumber_Inplace(out, -1)
			} else {
				o.inplace(out, x)
			}
		default:
			if !sameBuffer(out, x) {
				copy(out, x)
			}
			o.inplace(out, y)
		}
	case a.audio():
		if x := a.buf[:n]; !sameBuffer(out, x) {
			copy(out, x)
		}
		o.numberInplace(out, b.value())
	case b.audio():
		if y := b.buf[:n]; !sameBuffer(out, y) {
			copy(out, y)
		}
		if o.op == OpSub {
			vek32.MulNumber_Inplace(out, -1)
			vek32.AddNumber_Inplace(out, a.value())
		} else {
			o.numberInplace(out, a.value())
		}
	default:
		o.set(o.scalar(a.value(), b.value()), n)
	}
}

// inplace computes out = out op y.
func (o *BinaryOp) inplace(out, y []float32) {
	switch o.op {
	case OpAdd:
		vek32.Add_Inplace(out, y)
	case OpSub:
		vek32.Sub_Inplace(out, y)
	case OpMul:
		vek32.Mul_Inplace(out, y)
	case OpMin:
		vek32.Minimum_Inplace(out, y)
	case OpMax:
		vek32.Maximum_Inplace(out, y)
	}
}

// numberInplace computes out = out op v.
func (o *BinaryOp) numberInplace(out []float32, v float32) {
	switch o.op {
	case OpAdd:
		vek32.AddNumber_Inplace(out, v)
	case OpSub:
		vek32.SubNumber_Inplace(out, v)
	case OpMul:
		vek32.MulNumber_Inplace(out, v)
	case OpMin:
		vek32.MinimumNumber_Inplace(out, v)
	case OpMax:
		vek32.MaximumNumber_Inplace(out, v)
	}
}

// sameBuffer tells if two signal buffers are the same memory. Signal buffers
// are whole blocks, so they either coincide or do not overlap at all.
func sameBuffer(x, y []float32) bool {
	return len(x) > 0 && len(y) > 0 && &x[0] == &y[0]
}

// MulAdd computes in*mul + add.
type MulAdd struct {
	*base
	// shared is set when the output buffer is also one of the inputs, or two
	// inputs read the same buffer; the unit then computes sample by sample.
	shared bool
}

func newMulAdd(b *base, spec nova.UnitSpec) (synth.Unit, error) {
	var bufs [][]float32
	if b.outBufs[0] != nil {
		bufs = append(bufs, b.outBufs[0])
	}
	for i := range b.inputs {
		if b.inputs[i].audio() {
			bufs = append(bufs, b.inputs[i].buf)
		}
	}
	m := &MulAdd{base: b}
	for i := range bufs {
		for j := i + 1; j < len(bufs); j++ {
			m.shared = m.shared || sameBuffer(bufs[i], bufs[j])
		}
	}
	return m, nil
}

func (m *MulAdd) Process(n int) {
	in, mul, add := &m.inputs[0], &m.inputs[1], &m.inputs[2]
	out := m.outBufs[0]
	if out == nil {
		m.outputs[0].ScalarValue = in.value()*mul.value() + add.value()
		return
	}
	out = out[:n]
	if !in.audio() && !mul.audio() && !add.audio() {
		m.set(in.value()*mul.value()+add.value(), n)
		return
	}
	if m.shared {
		for i := range out {
			out[i] = in.at(i)*mul.at(i) + add.at(i)
		}
		return
	}
	switch {
	case in.audio() && mul.audio():
		vek32.Mul_Into(out, in.buf[:n], mul.buf[:n])
	case in.audio():
		vek32.MulNumber_Into(out, in.buf[:n], mul.value())
	case mul.audio():
		vek32.MulNumber_Into(out, mul.buf[:n], in.value())
	default:
		v := in.value() * mul.value()
		for i := range out {
			out[i] = v
		}
	}
	if add.audio() {
		vek32.Add_Inplace(out, add.buf[:n])
	} else if v := add.value(); v != 0 {
		vek32.AddNumber_Inplace(out, v)
	}
}
