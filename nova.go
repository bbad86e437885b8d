// Package nova contains the data types shared by the unit generator graph
// engine: synth definition templates, calculation rates and the engine
// configuration. The live instances are built by package synth.
package nova

import "fmt"

// CalcRate is the calculation rate of a unit generator or of a signal, i.e.
// how often it is serviced.
type CalcRate int

const (
	// CalcScalar signals are computed once, when the unit is constructed.
	// Constants are scalar-rate.
	CalcScalar CalcRate = iota
	// CalcControl units are serviced outside of the block loop.
	CalcControl
	// CalcBuffer units compute one value per block.
	CalcBuffer
	// CalcAudio units compute a full block of samples per block.
	CalcAudio
	// CalcDemand units are pulled by their consumers.
	CalcDemand
)

var calcRateNames = [...]string{"scalar", "control", "buffer", "audio", "demand"}

func (r CalcRate) String() string {
	if r < 0 || int(r) >= len(calcRateNames) {
		return fmt.Sprintf("CalcRate(%d)", int(r))
	}
	return calcRateNames[r]
}

// Block tells if units of this rate are run once per block by the block loop.
func (r CalcRate) Block() bool {
	return r == CalcAudio || r == CalcBuffer
}

// MarshalText encodes the rate by its name, so definitions can say
// "rate: audio" instead of a number.
func (r CalcRate) MarshalText() ([]byte, error) {
	if r < 0 || int(r) >= len(calcRateNames) {
		return nil, fmt.Errorf("invalid calculation rate %d", int(r))
	}
	return []byte(calcRateNames[r]), nil
}

func (r *CalcRate) UnmarshalText(text []byte) error {
	s := string(text)
	switch s {
	case "ir":
		s = "scalar"
	case "kr":
		s = "control"
	case "ar":
		s = "audio"
	case "dr":
		s = "demand"
	}
	for i, name := range calcRateNames {
		if name == s {
			*r = CalcRate(i)
			return nil
		}
	}
	return fmt.Errorf("unknown calculation rate %q", string(text))
}
