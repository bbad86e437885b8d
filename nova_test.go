package nova_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/novasynth/nova"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCalcRateText(t *testing.T) {
	for _, c := range []struct {
		text string
		want nova.CalcRate
	}{
		{"scalar", nova.CalcScalar},
		{"ir", nova.CalcScalar},
		{"control", nova.CalcControl},
		{"kr", nova.CalcControl},
		{"buffer", nova.CalcBuffer},
		{"audio", nova.CalcAudio},
		{"ar", nova.CalcAudio},
		{"demand", nova.CalcDemand},
		{"dr", nova.CalcDemand},
	} {
		var r nova.CalcRate
		require.NoError(t, r.UnmarshalText([]byte(c.text)), c.text)
		assert.Equal(t, c.want, r, c.text)
	}
	var r nova.CalcRate
	assert.Error(t, r.UnmarshalText([]byte("sometimes")))
	_, err := nova.CalcRate(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "CalcRate(42)", nova.CalcRate(42).String())

	out, err := yaml.Marshal(nova.UnitSpec{Name: "SinOsc", Rate: nova.CalcAudio})
	require.NoError(t, err)
	assert.Contains(t, string(out), "rate: audio")
}

func TestBlockRates(t *testing.T) {
	assert.True(t, nova.CalcAudio.Block())
	assert.True(t, nova.CalcBuffer.Block())
	assert.False(t, nova.CalcScalar.Block())
	assert.False(t, nova.CalcControl.Block())
	assert.False(t, nova.CalcDemand.Block())
}

func TestNewRate(t *testing.T) {
	r := nova.NewRate(48000, 64)
	assert.Equal(t, 64, r.BufLength)
	assert.InDelta(t, 1.0/48000, r.SampleDur, 1e-12)
	assert.InDelta(t, 64.0/48000, r.BufDuration, 1e-12)
	assert.InDelta(t, 750, r.BufRate, 1e-9)
	assert.InDelta(t, 1.0/64, r.SlopeFactor, 1e-12)
	assert.InDelta(t, 2*math.Pi/48000, r.RadiansPerSample, 1e-12)
	assert.Equal(t, 21, r.FilterLoops)
	assert.Equal(t, 1, r.FilterRemain)
	assert.InDelta(t, 1.0/21, r.FilterSlope, 1e-12)

	one := nova.NewRate(750, 1)
	assert.Equal(t, 0, one.FilterLoops)
	assert.Zero(t, one.FilterSlope)
}

func TestConfig(t *testing.T) {
	c, err := nova.LoadConfig(filepath.Join("testdata", "config.yml"))
	require.NoError(t, err)
	assert.Equal(t, 48000.0, c.SampleRate)
	assert.Equal(t, 128, c.BlockSize)
	assert.Equal(t, 1<<20, c.PoolSize)
	assert.Equal(t, nova.DefaultConfig().AudioBuses, c.AudioBuses, "missing fields keep their defaults")

	full, buf := c.FullRate(), c.BufRate()
	assert.Equal(t, 128, full.BufLength)
	assert.Equal(t, 1, buf.BufLength)
	assert.InDelta(t, 48000.0/128, buf.SampleRate, 1e-9)

	for _, data := range []string{
		"samplerate: 0",
		"blocksize: -1",
		"outputchannels: 300",
		"poolsize: -5",
		"samplerate: [",
	} {
		_, err := nova.ParseConfig([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestLoadSynthDef(t *testing.T) {
	sine, err := nova.LoadSynthDef(filepath.Join("testdata", "sine.yml"))
	require.NoError(t, err)
	assert.Equal(t, "sine", sine.Name)
	assert.Equal(t, 3, sine.ParameterCount())
	assert.Equal(t, 1, sine.ConstantCount())
	require.Len(t, sine.Graph, 4)
	assert.Equal(t, nova.CalcBuffer, sine.Graph[0].Rate)
	assert.Equal(t, 2, sine.Graph[2].SpecialIndex)
	slot, ok := sine.ParameterIndex("amp")
	assert.True(t, ok)
	assert.Equal(t, 1, slot)
	_, ok = sine.ParameterIndex("cutoff")
	assert.False(t, ok)

	noise, err := nova.LoadSynthDef(filepath.Join("testdata", "noise.json"))
	require.NoError(t, err)
	assert.Equal(t, "noise", noise.Name)
	assert.Equal(t, nova.CalcAudio, noise.Graph[1].Rate)
	assert.True(t, noise.Graph[2].Inputs[2].IsConstant())

	_, err = nova.LoadSynthDef(filepath.Join("testdata", "missing.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	audio := []nova.OutputSpec{{Rate: nova.CalcAudio}}
	cases := []struct {
		name string
		def  nova.SynthDef
	}{
		{"negative buffer count", nova.SynthDef{BufferCount: -1}},
		{"unnamed unit", nova.SynthDef{Graph: []nova.UnitSpec{{}}}},
		{"parameter name out of range", nova.SynthDef{Parameters: []float32{1}, ParameterNames: map[string]int{"freq": 1}}},
		{"constant out of range", nova.SynthDef{Graph: []nova.UnitSpec{
			{Name: "DC", Inputs: []nova.InputSpec{nova.ConstantInput(0)}},
		}}},
		{"forward reference", nova.SynthDef{Constants: []float32{0}, Graph: []nova.UnitSpec{
			{Name: "DC", Inputs: []nova.InputSpec{{Unit: 1}}},
			{Name: "DC", Inputs: []nova.InputSpec{nova.ConstantInput(0)}},
		}}},
		{"self reference", nova.SynthDef{Graph: []nova.UnitSpec{
			{Name: "DC", Inputs: []nova.InputSpec{{Unit: 0}}, Outputs: audio},
		}, BufferCount: 1}},
		{"missing output", nova.SynthDef{Constants: []float32{0}, BufferCount: 1, Graph: []nova.UnitSpec{
			{Name: "DC", Inputs: []nova.InputSpec{nova.ConstantInput(0)}, Outputs: audio},
			{Name: "DC", Inputs: []nova.InputSpec{{Unit: 0, Output: 1}}},
		}}},
		{"buffer out of range", nova.SynthDef{Graph: []nova.UnitSpec{
			{Name: "WhiteNoise", Outputs: audio},
		}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Error(t, c.def.Validate())
		})
	}

	valid := nova.SynthDef{
		Parameters:     []float32{440},
		ParameterNames: map[string]int{"freq": 0},
		Constants:      []float32{0},
		BufferCount:    1,
		Graph: []nova.UnitSpec{
			{Name: "Control", Rate: nova.CalcBuffer, Outputs: []nova.OutputSpec{{Rate: nova.CalcBuffer}}},
			{Name: "SinOsc", Rate: nova.CalcAudio, Inputs: []nova.InputSpec{{Unit: 0}, nova.ConstantInput(0)}, Outputs: audio},
		},
	}
	assert.NoError(t, valid.Validate())
}

func TestParseSynthDefRejectsGarbage(t *testing.T) {
	_, err := nova.ParseSynthDef([]byte("graph: [\n"))
	assert.Error(t, err)
	_, err = nova.ParseSynthDef([]byte("graph:\n  - name: DC\n    inputs: [{unit: -1, output: 3}]\n"))
	assert.Error(t, err)
}

func TestRaw(t *testing.T) {
	buffer := []float32{0, 0.5, -1, 2}
	data, err := nova.Raw(buffer, false)
	require.NoError(t, err)
	require.Len(t, data, 4*len(buffer))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(data[4:])))

	data, err = nova.Raw(buffer, true)
	require.NoError(t, err)
	require.Len(t, data, 2*len(buffer))
	assert.Equal(t, int16(-math.MaxInt16), int16(binary.LittleEndian.Uint16(data[4:])))
	assert.Equal(t, int16(math.MaxInt16), int16(binary.LittleEndian.Uint16(data[6:])), "out of range samples are clamped")
}

func TestWriteWav(t *testing.T) {
	buffer := make([]float32, 2*100)
	for i := range buffer {
		buffer[i] = float32(math.Sin(float64(i) / 10))
	}
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, nova.WriteWav(f, buffer, 44100, 2, 16))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	d := wav.NewDecoder(f)
	require.True(t, d.IsValidFile())
	pcm, err := d.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, uint32(44100), d.SampleRate)
	assert.Equal(t, uint16(2), d.NumChans)
	assert.Equal(t, uint16(16), d.BitDepth)
	require.Len(t, pcm.Data, len(buffer))
	for i, v := range pcm.Data {
		assert.InDelta(t, float64(buffer[i])*math.MaxInt16, float64(v), 1, "sample %d", i)
	}

	assert.Error(t, nova.WriteWav(f, buffer, 44100, 2, 12))
	assert.Error(t, nova.WriteWav(f, buffer, 44100, 0, 16))
}
