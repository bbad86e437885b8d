package ugens

import (
	"math"

	"github.com/novasynth/nova"
	"github.com/novasynth/nova/synth"
)

// SinOsc is a sine oscillator. Inputs: frequency in Hz and phase offset in
// radians.
type SinOsc struct {
	*base
	phase            float64
	radiansPerSample float64
}

func newSinOsc(b *base, spec nova.UnitSpec) (synth.Unit, error) {
	return &SinOsc{base: b, radiansPerSample: b.timing().RadiansPerSample}, nil
}

func (o *SinOsc) Process(n int) {
	freq, phase := &o.inputs[0], &o.inputs[1]
	if buf := o.outBufs[0]; buf != nil {
		for i := range buf[:n] {
			f, p := freq.at(i), phase.at(i)
			buf[i] = float32(math.Sin(o.phase + float64(p)))
			o.advance(f)
		}
		return
	}
	o.outputs[0].ScalarValue = float32(math.Sin(o.phase + float64(phase.value())))
	o.advance(freq.value())
}

func (o *SinOsc) advance(freq float32) {
	o.phase += float64(freq) * o.radiansPerSample
	if o.phase >= 2*math.Pi || o.phase < 0 {
		o.phase = math.Mod(o.phase, 2*math.Pi)
		if o.phase < 0 {
			o.phase += 2 * math.Pi
		}
	}
}

// WhiteNoise outputs uniform noise in [-1, 1) from the random generator of
// the instance.
type WhiteNoise struct {
	*base
	rgen *synth.RGen
}

func newWhiteNoise(b *base, spec nova.UnitSpec) (synth.Unit, error) {
	return &WhiteNoise{base: b, rgen: b.synth.RGen()}, nil
}

func (w *WhiteNoise) Process(n int) {
	if buf := w.outBufs[0]; buf != nil {
		for i := range buf[:n] {
			buf[i] = w.rgen.Frand2()
		}
		return
	}
	w.outputs[0].ScalarValue = w.rgen.Frand2()
}

// DC outputs its input as a constant signal.
type DC struct {
	*base
}

func newDC(b *base, spec nova.UnitSpec) (synth.Unit, error) {
	return &DC{base: b}, nil
}

func (d *DC) Process(n int) {
	d.set(d.inputs[0].value(), n)
}
