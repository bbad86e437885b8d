// Package midi turns MIDI control change messages into control updates of a
// running synth.
package midi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/novasynth/nova/synth"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
)

type (
	// Binding maps a MIDI controller number to a named parameter. The 0..127
	// controller value is scaled linearly to Min..Max.
	Binding struct {
		Controller uint8
		Param      string
		Min, Max   float32
	}

	// Setter queues control updates; *synth.Driver implements it.
	Setter interface {
		Set(s *synth.Synth, slot int, value float32) error
	}

	// Controller applies control change messages to one synth.
	Controller struct {
		setter  Setter
		synth   *synth.Synth
		channel int // -1 listens to all channels
		slots   map[uint8]boundSlot
		log     logrus.FieldLogger
	}

	boundSlot struct {
		slot     int
		min, max float32
	}
)

// ParseBinding parses a binding of the form "cc=param" or
// "cc=param:min:max". Without a range the value is scaled to 0..1.
func ParseBinding(s string) (Binding, error) {
	cc, rest, ok := strings.Cut(s, "=")
	if !ok {
		return Binding{}, fmt.Errorf("binding %q should be of the form cc=param[:min:max]", s)
	}
	n, err := strconv.ParseUint(cc, 10, 8)
	if err != nil || n > 127 {
		return Binding{}, fmt.Errorf("invalid controller number %q", cc)
	}
	b := Binding{Controller: uint8(n), Min: 0, Max: 1}
	parts := strings.Split(rest, ":")
	b.Param = parts[0]
	if b.Param == "" {
		return Binding{}, fmt.Errorf("binding %q has no parameter", s)
	}
	switch len(parts) {
	case 1:
	case 3:
		lo, err := strconv.ParseFloat(parts[1], 32)
		if err != nil {
			return Binding{}, fmt.Errorf("invalid minimum in %q: %w", s, err)
		}
		hi, err := strconv.ParseFloat(parts[2], 32)
		if err != nil {
			return Binding{}, fmt.Errorf("invalid maximum in %q: %w", s, err)
		}
		b.Min, b.Max = float32(lo), float32(hi)
	default:
		return Binding{}, fmt.Errorf("binding %q should be of the form cc=param[:min:max]", s)
	}
	return b, nil
}

// NewController binds the controllers to the parameters of s. Updates are
// queued through setter so they land between blocks. A negative channel
// listens to all MIDI channels.
func NewController(setter Setter, s *synth.Synth, channel int, logger logrus.FieldLogger, bindings ...Binding) (*Controller, error) {
	c := &Controller{
		setter:  setter,
		synth:   s,
		channel: channel,
		slots:   make(map[uint8]boundSlot, len(bindings)),
		log:     logger.WithField("node", s.NodeID()),
	}
	for _, b := range bindings {
		slot, ok := s.Def().ParameterIndex(b.Param)
		if !ok {
			return nil, fmt.Errorf("synthdef %q has no parameter %q", s.Def().Name, b.Param)
		}
		c.slots[b.Controller] = boundSlot{slot: slot, min: b.Min, max: b.Max}
	}
	return c, nil
}

// HandleMessage has the signature of a gomidi listener. Messages other than
// control changes of bound controllers are ignored.
func (c *Controller) HandleMessage(msg midi.Message, timestampms int32) {
	var channel, controller, value uint8
	if !msg.GetControlChange(&channel, &controller, &value) {
		return
	}
	if c.channel >= 0 && int(channel) != c.channel {
		return
	}
	b, ok := c.slots[controller]
	if !ok {
		return
	}
	v := b.min + (b.max-b.min)*float32(value)/127
	if err := c.setter.Set(c.synth, b.slot, v); err != nil {
		c.log.WithError(err).WithField("controller", controller).Warn("dropped control change")
	}
}
