package ugens

import (
	"fmt"

	"github.com/novasynth/nova"
	"github.com/novasynth/nova/synth"
	"github.com/viterin/vek/vek32"
)

// Out mixes its channel inputs onto consecutive audio buses of the world,
// starting at the bus given by the first input.
type Out struct {
	*base
	world *synth.World
}

func newOut(b *base, spec nova.UnitSpec) (synth.Unit, error) {
	if len(spec.Inputs) < 2 {
		return nil, fmt.Errorf("%v needs at least one channel", spec.Name)
	}
	return &Out{base: b, world: b.synth.World()}, nil
}

func (o *Out) Process(n int) {
	first := int(o.inputs[0].value())
	channels := o.inputs[1:]
	if first < 0 || first+len(channels) > o.world.Config.AudioBuses {
		return
	}
	for i := range channels {
		bus := o.world.AudioBusChannel(first + i)[:n]
		if in := &channels[i]; in.audio() {
			vek32.Add_Inplace(bus, in.buf[:n])
		} else {
			vek32.AddNumber_Inplace(bus, in.value())
		}
	}
}
