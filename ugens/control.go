package ugens

import (
	"fmt"

	"github.com/novasynth/nova"
	"github.com/novasynth/nova/synth"
)

// Control outputs the controls of the instance starting at SpecialIndex, one
// output per control, read through the control map every block.
type Control struct {
	*base
	first int
}

func newControl(b *base, spec nova.UnitSpec) (synth.Unit, error) {
	if spec.SpecialIndex < 0 || spec.SpecialIndex+len(spec.Outputs) > b.synth.NumControls() {
		return nil, fmt.Errorf("controls %d..%d out of range, synth has %d", spec.SpecialIndex, spec.SpecialIndex+len(spec.Outputs), b.synth.NumControls())
	}
	return &Control{base: b, first: spec.SpecialIndex}, nil
}

func (c *Control) Process(n int) {
	for i := range c.outputs {
		v := c.synth.Control(c.first + i)
		if buf := c.outBufs[i]; buf != nil {
			for j := range buf[:n] {
				buf[j] = v
			}
			continue
		}
		c.outputs[i].ScalarValue = v
	}
}
