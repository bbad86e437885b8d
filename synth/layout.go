package synth

import "unsafe"

// Layout partitions the control block of an instance into its four
// regions: controls, control rates, control map and constant wires. It
// depends only on the parameter and constant counts.
type Layout struct {
	Params    int
	Constants int

	Controls int // byte offsets of the regions
	Rates    int
	Mapping  int
	Wires    int

	Size int
}

const (
	controlSize     = int(unsafe.Sizeof(float32(0)))
	controlRateSize = int(unsafe.Sizeof(ControlRate(0)))
	controlRefSize  = int(unsafe.Sizeof(ControlRef{}))
	wireSize        = int(unsafe.Sizeof(Wire{}))
	sampleSize      = int(unsafe.Sizeof(float32(0)))
)

// NewLayout returns the control block layout of an instance with the given
// parameter and constant counts.
func NewLayout(params, constants int) Layout {
	l := Layout{Params: params, Constants: constants}
	l.Controls = 0
	l.Rates = l.Controls + params*controlSize
	l.Mapping = l.Rates + params*controlRateSize
	l.Wires = l.Mapping + params*controlRefSize
	l.Size = l.Wires + constants*wireSize
	return l
}

// controlBlock holds the per-instance control state. It is reserved from the
// allocator as a single block and released as a single block.
type controlBlock struct {
	controls     []float32
	controlRates []ControlRate
	controlMap   []ControlRef
	wires        []Wire
}

func newControlBlock(l Layout) controlBlock {
	return controlBlock{
		controls:     make([]float32, l.Params),
		controlRates: make([]ControlRate, l.Params),
		controlMap:   make([]ControlRef, l.Params),
		wires:        make([]Wire, l.Constants),
	}
}
