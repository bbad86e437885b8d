package synth_test

import (
	"errors"
	"testing"

	"github.com/novasynth/nova"
	"github.com/novasynth/nova/log"
	"github.com/novasynth/nova/synth"
	"github.com/stretchr/testify/require"
)

const unitSize = 32

type call struct {
	unit int
	n    int
}

// recorder is a unit factory that builds probe units and records every
// Process call and every release.
type recorder struct {
	calls  []call
	freed  map[int]int
	failAt int
}

func newRecorder() *recorder {
	return &recorder{calls: make([]call, 0, 1<<16), freed: map[int]int{}, failAt: -1}
}

var errFactory = errors.New("factory failure")

func (r *recorder) AllocateUnit(s *synth.Synth, spec nova.UnitSpec) (synth.Unit, error) {
	index := s.NumUnits()
	if index == r.failAt {
		return nil, errFactory
	}
	for _, in := range spec.Inputs {
		if _, err := s.Input(in); err != nil {
			return nil, err
		}
	}
	if err := s.World().Allocator().Allocate(unitSize); err != nil {
		return nil, err
	}
	p := &probe{index: index, rate: spec.Rate, rec: r, allocator: s.World().Allocator()}
	for _, out := range spec.Outputs {
		w := synth.Wire{FromUnit: index, CalcRate: out.Rate, Buffer: -1}
		if out.Rate == nova.CalcAudio {
			w.Buffer = out.Buffer
			p.buffer = s.Buffer(out.Buffer)
		}
		p.outputs = append(p.outputs, w)
	}
	return p, nil
}

func (r *recorder) FreeUnit(u synth.Unit) {
	p := u.(*probe)
	r.freed[p.index]++
	p.allocator.Free(unitSize)
}

type probe struct {
	index     int
	rate      nova.CalcRate
	rec       *recorder
	allocator synth.Allocator
	buffer    []float32
	outputs   []synth.Wire
}

func (p *probe) Rate() nova.CalcRate { return p.rate }

func (p *probe) Process(n int) {
	p.rec.calls = append(p.rec.calls, call{unit: p.index, n: n})
	for i := range p.buffer[:min(n, len(p.buffer))] {
		p.buffer[i] += float32(p.index + 1)
	}
	for i := range p.outputs {
		if p.outputs[i].Buffer < 0 {
			p.outputs[i].ScalarValue++
		}
	}
}

func (p *probe) Output(i int) *synth.Wire {
	if i < 0 || i >= len(p.outputs) {
		return nil
	}
	return &p.outputs[i]
}

func newWorld(t *testing.T, factory synth.UnitFactory, pool *synth.Pool) *synth.World {
	t.Helper()
	w, err := synth.NewWorld(nova.DefaultConfig(), factory, synth.WithAllocator(pool), synth.WithLogger(log.Discard()))
	require.NoError(t, err)
	return w
}

// audioUnit returns an audio rate unit writing to the given buffer.
func audioUnit(buffer int, inputs ...nova.InputSpec) nova.UnitSpec {
	return nova.UnitSpec{Name: "Probe", Rate: nova.CalcAudio, Inputs: inputs,
		Outputs: []nova.OutputSpec{{Rate: nova.CalcAudio, Buffer: buffer}}}
}

func rateUnit(rate nova.CalcRate, inputs ...nova.InputSpec) nova.UnitSpec {
	return nova.UnitSpec{Name: "Probe", Rate: rate, Inputs: inputs,
		Outputs: []nova.OutputSpec{{Rate: rate}}}
}
