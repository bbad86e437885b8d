package nova

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// SynthDef is the immutable blueprint of a synth: the parameter defaults,
	// the constants and the unit generator graph. It is produced by a synthdef
	// compiler and is shared by all the instances built from it, so it should
	// not be modified after it has been handed to the engine.
	SynthDef struct {
		Name string `yaml:",omitempty"`

		// Parameters are the default values of the controls of an instance.
		Parameters []float32 `yaml:",flow"`

		// ParameterNames maps parameter names to their control slots.
		ParameterNames map[string]int `yaml:",omitempty"`

		// Constants are the constant inputs of the units.
		Constants []float32 `yaml:",flow,omitempty"`

		// Graph is the list of units in execution order: every unit comes
		// after the units it reads from. The engine never reorders it.
		Graph []UnitSpec

		// BufferCount is the number of block-sized signal buffers the audio
		// rate outputs of the graph need.
		BufferCount int `yaml:",omitempty"`
	}

	// UnitSpec describes one unit generator of the graph.
	UnitSpec struct {
		// Name is the kind of the unit, e.g. "SinOsc" or "BinaryOpUGen".
		Name string

		Rate CalcRate

		// SpecialIndex is a unit specific selector, e.g. the operator of a
		// BinaryOpUGen or the first control slot of a Control.
		SpecialIndex int `yaml:",omitempty"`

		Inputs  []InputSpec  `yaml:",omitempty"`
		Outputs []OutputSpec `yaml:",omitempty"`
	}

	// InputSpec wires an input to either a constant (Unit == -1, Output is the
	// constant index) or an output of an earlier unit.
	InputSpec struct {
		Unit   int
		Output int
	}

	// OutputSpec is one output of a unit. Buffer is the signal buffer an audio
	// rate output writes to; it is ignored for other rates.
	OutputSpec struct {
		Rate   CalcRate
		Buffer int `yaml:",omitempty"`
	}
)

// ConstantInput returns an input spec reading the constant with the given
// index.
func ConstantInput(index int) InputSpec {
	return InputSpec{Unit: -1, Output: index}
}

// IsConstant tells if the input reads a constant.
func (i InputSpec) IsConstant() bool {
	return i.Unit < 0
}

// ParameterCount is the number of control slots of an instance.
func (d *SynthDef) ParameterCount() int {
	return len(d.Parameters)
}

// ConstantCount is the number of constant wires of an instance.
func (d *SynthDef) ConstantCount() int {
	return len(d.Constants)
}

// ParameterIndex returns the control slot of a named parameter.
func (d *SynthDef) ParameterIndex(name string) (int, bool) {
	slot, ok := d.ParameterNames[name]
	if !ok || slot < 0 || slot >= len(d.Parameters) {
		return 0, false
	}
	return slot, true
}

// Validate checks that the definition fulfills the contract the engine relies
// on: inputs refer to existing constants or to outputs of earlier units, and
// audio outputs fit in BufferCount buffers.
func (d *SynthDef) Validate() error {
	if d.BufferCount < 0 {
		return errors.New("buffer count cannot be negative")
	}
	for name, slot := range d.ParameterNames {
		if slot < 0 || slot >= len(d.Parameters) {
			return fmt.Errorf("parameter %q refers to slot %d, but there are only %d parameters", name, slot, len(d.Parameters))
		}
	}
	for i, u := range d.Graph {
		if u.Name == "" {
			return fmt.Errorf("unit %d has no name", i)
		}
		for j, in := range u.Inputs {
			if in.IsConstant() {
				if in.Output < 0 || in.Output >= len(d.Constants) {
					return fmt.Errorf("input %d of unit %d (%v) refers to constant %d, but there are only %d constants", j, i, u.Name, in.Output, len(d.Constants))
				}
				continue
			}
			if in.Unit >= i {
				return fmt.Errorf("input %d of unit %d (%v) refers to unit %d, which does not come before it", j, i, u.Name, in.Unit)
			}
			if in.Output < 0 || in.Output >= len(d.Graph[in.Unit].Outputs) {
				return fmt.Errorf("input %d of unit %d (%v) refers to output %d of unit %d, which has %d outputs", j, i, u.Name, in.Output, in.Unit, len(d.Graph[in.Unit].Outputs))
			}
		}
		for j, out := range u.Outputs {
			if out.Rate == CalcAudio && (out.Buffer < 0 || out.Buffer >= d.BufferCount) {
				return fmt.Errorf("output %d of unit %d (%v) uses buffer %d, but buffer count is %d", j, i, u.Name, out.Buffer, d.BufferCount)
			}
		}
	}
	return nil
}

// ParseSynthDef parses a synth definition from .json or .yml data and
// validates it.
func ParseSynthDef(data []byte) (*SynthDef, error) {
	var def SynthDef
	if errJSON := json.Unmarshal(data, &def); errJSON != nil {
		def = SynthDef{}
		if errYaml := yaml.Unmarshal(data, &def); errYaml != nil {
			return nil, fmt.Errorf("the synthdef could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid synthdef %q: %w", def.Name, err)
	}
	return &def, nil
}

// LoadSynthDef reads and parses a synth definition file.
func LoadSynthDef(path string) (*SynthDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read file %v: %w", path, err)
	}
	return ParseSynthDef(data)
}
