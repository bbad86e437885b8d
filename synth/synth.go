// Package synth instantiates synth definitions into live unit generator
// graphs and runs them one block at a time.
//
// A Synth is driven from two places: Run is called once per block by the
// audio thread and must finish before the next block is due, while Set and
// the other control calls come from the control path. The package does no
// locking of its own; the caller serializes control calls with Run, for
// example by funneling both through a Driver.
package synth

import (
	"fmt"

	"github.com/novasynth/nova"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// Synth is a live instance of a synth definition.
type Synth struct {
	world *World
	def   *nova.SynthDef
	id    int32
	uid   string

	layout Layout
	controlBlock
	unitBuffers []float32
	units       []unitHandle

	running bool
	freed   bool
	rgen    RGen
}

// Construction stages reported by ConstructionError.
const (
	StageControls = "controls"
	StageBuffers  = "buffers"
	StageUnits    = "units"
)

// ConstructionError is returned when an instance could not be built. Nothing
// acquired during the failed construction is retained.
type ConstructionError struct {
	NodeID int32
	Def    string
	Stage  string
	Unit   int // index of the failing unit, -1 if the failure is not in a unit
	Err    error
}

func (e *ConstructionError) Error() string {
	if e.Stage == StageUnits {
		return fmt.Sprintf("could not construct node %d (%v): unit %d: %v", e.NodeID, e.Def, e.Unit, e.Err)
	}
	return fmt.Sprintf("could not construct node %d (%v): %v: %v", e.NodeID, e.Def, e.Stage, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// New builds a live instance of def with the node ID id. Either the whole
// instance is built or nothing is: on failure every block and unit acquired
// so far is released and a *ConstructionError is returned.
func New(w *World, def *nova.SynthDef, id int32) (*Synth, error) {
	s := &Synth{
		world:   w,
		def:     def,
		id:      id,
		uid:     xid.New().String(),
		running: true,
	}
	s.rgen.Init(uint64(uint32(id)))
	log := s.logger()
	fail := func(stage string, unit int, err error) (*Synth, error) {
		s.release()
		log.WithError(err).WithField("stage", stage).Warn("synth construction failed")
		return nil, &ConstructionError{NodeID: id, Def: def.Name, Stage: stage, Unit: unit, Err: err}
	}

	layout := NewLayout(def.ParameterCount(), def.ConstantCount())
	if err := w.allocator.Allocate(layout.Size); err != nil {
		return fail(StageControls, -1, err)
	}
	s.layout = layout
	s.controlBlock = newControlBlock(layout)
	for i, v := range def.Parameters {
		s.controls[i] = v
		s.controlMap[i] = LocalControl(i)
		s.controlRates[i] = ControlPlain
	}
	for i, v := range def.Constants {
		s.wires[i] = ConstantWire(v)
	}

	bufferSize := w.FullRate.BufLength * def.BufferCount
	if err := w.allocator.Allocate(bufferSize * sampleSize); err != nil {
		return fail(StageBuffers, -1, err)
	}
	s.unitBuffers = make([]float32, bufferSize)

	s.units = make([]unitHandle, 0, len(def.Graph))
	for i, spec := range def.Graph {
		unit, err := w.factory.AllocateUnit(s, spec)
		if err != nil {
			return fail(StageUnits, i, fmt.Errorf("%v: %w", spec.Name, err))
		}
		if unit == nil {
			return fail(StageUnits, i, fmt.Errorf("%v: factory returned no unit", spec.Name))
		}
		h := unitHandle{rate: unit.Rate(), bufLength: w.BufRate.BufLength, unit: unit}
		if h.rate == nova.CalcAudio {
			h.bufLength = w.FullRate.BufLength
		}
		s.units = append(s.units, h)
	}
	log.WithFields(logrus.Fields{
		"controls": len(s.controls),
		"wires":    len(s.wires),
		"units":    len(s.units),
		"bytes":    layout.Size + bufferSize*sampleSize,
	}).Debug("synth constructed")
	return s, nil
}

// Run computes one block: every audio rate and buffer rate unit is processed
// once, in graph order. Units of other rates are not serviced here. Run does
// nothing if the synth is not running.
func (s *Synth) Run() {
	if !s.running {
		return
	}
	for i := range s.units {
		h := &s.units[i]
		if h.rate.Block() {
			h.unit.Process(h.bufLength)
		}
	}
}

// SetRunning pauses or resumes the synth without destroying it.
func (s *Synth) SetRunning(running bool) {
	s.running = running
}

func (s *Synth) Running() bool {
	return s.running
}

// Free releases the control block, the signal buffers and every unit of the
// instance. The synth must not be used afterwards; calling Free again does
// nothing.
func (s *Synth) Free() {
	if s.freed {
		return
	}
	s.release()
	s.logger().Debug("synth freed")
}

// release frees whatever has been acquired so far, in order: control block,
// signal buffers, units.
func (s *Synth) release() {
	s.freed = true
	s.running = false
	if s.controls != nil {
		s.world.allocator.Free(s.layout.Size)
		s.controlBlock = controlBlock{}
	}
	if s.unitBuffers != nil {
		s.world.allocator.Free(len(s.unitBuffers) * sampleSize)
		s.unitBuffers = nil
	}
	for _, h := range s.units {
		s.world.factory.FreeUnit(h.unit)
	}
	s.units = nil
}

func (s *Synth) logger() logrus.FieldLogger {
	return s.world.log.WithFields(logrus.Fields{"node": s.id, "uid": s.uid, "def": s.def.Name})
}

func (s *Synth) World() *World          { return s.world }
func (s *Synth) Def() *nova.SynthDef    { return s.def }
func (s *Synth) NodeID() int32          { return s.id }
func (s *Synth) UID() string            { return s.uid }
func (s *Synth) RGen() *RGen            { return &s.rgen }
func (s *Synth) Wires() []Wire          { return s.wires }
func (s *Synth) UnitBuffers() []float32 { return s.unitBuffers }

// Layout returns the layout of the control block of the instance.
func (s *Synth) Layout() Layout { return s.layout }

// Buffer returns the i-th signal buffer of the instance.
func (s *Synth) Buffer(i int) []float32 {
	n := s.world.FullRate.BufLength
	return s.unitBuffers[i*n : (i+1)*n : (i+1)*n]
}
