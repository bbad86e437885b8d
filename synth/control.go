package synth

import "fmt"

// ControlRate tags how a control slot is read. ControlPlain is the only rate
// the engine interprets; other values are reserved for bus mapping modes.
type ControlRate int32

const ControlPlain ControlRate = 0

type controlSource uint8

const (
	localSource controlSource = iota
	busSource
)

// ControlRef is an entry of the control map: it refers either to the
// instance's own control slot or to a control bus of the world. Units read
// their parameters through it, so a parameter can be redirected without
// rebinding any unit.
type ControlRef struct {
	source controlSource
	index  int32
}

// LocalControl refers to a control slot of the instance itself.
func LocalControl(slot int) ControlRef {
	return ControlRef{source: localSource, index: int32(slot)}
}

// BusControl refers to a control bus of the world.
func BusControl(bus int) ControlRef {
	return ControlRef{source: busSource, index: int32(bus)}
}

// Local returns the slot and true if the reference points into the instance.
func (r ControlRef) Local() (int, bool) {
	return int(r.index), r.source == localSource
}

// Bus returns the bus and true if the reference points to a control bus.
func (r ControlRef) Bus() (int, bool) {
	return int(r.index), r.source == busSource
}

func (r ControlRef) String() string {
	if r.source == busSource {
		return fmt.Sprintf("c%d", r.index)
	}
	return fmt.Sprintf("slot %d", r.index)
}

// Set sets a control to a plain value, cancelling any mapping of the slot.
// The slot must be smaller than the parameter count; the caller validates it.
//
// Set is not synchronized with Run: the caller must serialize the two, e.g.
// by issuing both from the same goroutine (see Driver).
func (s *Synth) Set(slot int, value float32) {
	s.controlRates[slot] = ControlPlain
	s.controlMap[slot] = LocalControl(slot)
	s.controls[slot] = value
}

// SetNamed sets a control by its parameter name.
func (s *Synth) SetNamed(name string, value float32) error {
	slot, ok := s.def.ParameterIndex(name)
	if !ok {
		return fmt.Errorf("synthdef %q has no parameter %q", s.def.Name, name)
	}
	s.Set(slot, value)
	return nil
}

// MapControl redirects a control slot to read a control bus of the world. The
// rate tag of the slot is left as it is. Set cancels the mapping.
func (s *Synth) MapControl(slot, bus int) error {
	if bus < 0 || bus >= len(s.world.ControlBus) {
		return fmt.Errorf("control bus %d out of range [0, %d)", bus, len(s.world.ControlBus))
	}
	s.controlMap[slot] = BusControl(bus)
	return nil
}

// Control reads a control through the control map. This is what units use to
// read their parameters.
func (s *Synth) Control(slot int) float32 {
	ref := s.controlMap[slot]
	if ref.source == busSource {
		return s.world.ControlBus[ref.index]
	}
	return s.controls[ref.index]
}

// NumControls returns the parameter count of the instance.
func (s *Synth) NumControls() int { return len(s.controls) }

// ControlValue returns the value stored in the slot itself, ignoring the map.
func (s *Synth) ControlValue(slot int) float32 { return s.controls[slot] }

func (s *Synth) ControlRateOf(slot int) ControlRate { return s.controlRates[slot] }

func (s *Synth) ControlMapping(slot int) ControlRef { return s.controlMap[slot] }
