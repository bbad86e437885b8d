package nova

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the engine wide configuration. It is fixed for the lifetime of a
// world; the block size and sample rate are never renegotiated per block.
type Config struct {
	SampleRate float64 `yaml:"samplerate"`

	// BlockSize is the number of samples every audio rate unit computes per
	// block.
	BlockSize int `yaml:"blocksize"`

	AudioBuses     int `yaml:"audiobuses"`
	ControlBuses   int `yaml:"controlbuses"`
	OutputChannels int `yaml:"outputchannels"`

	// PoolSize limits the bytes the real-time memory pool hands out. Zero
	// means unlimited.
	PoolSize int `yaml:"poolsize,omitempty"`
}

// DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		SampleRate:     44100,
		BlockSize:      64,
		AudioBuses:     128,
		ControlBuses:   4096,
		OutputChannels: 2,
	}
}

// FullRate returns the timing constants of audio rate units.
func (c Config) FullRate() Rate {
	return NewRate(c.SampleRate, c.BlockSize)
}

// BufRate returns the timing constants of buffer rate units: one value per
// block.
func (c Config) BufRate() Rate {
	return NewRate(c.SampleRate/float64(c.BlockSize), 1)
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate should be > 0")
	}
	if c.BlockSize <= 0 {
		return errors.New("block size should be > 0")
	}
	if c.OutputChannels < 0 || c.OutputChannels > c.AudioBuses {
		return fmt.Errorf("output channels (%d) should be between 0 and the number of audio buses (%d)", c.OutputChannels, c.AudioBuses)
	}
	if c.ControlBuses < 0 {
		return errors.New("control bus count cannot be negative")
	}
	if c.PoolSize < 0 {
		return errors.New("pool size cannot be negative")
	}
	return nil
}

// ParseConfig parses a .yml configuration. Missing fields keep their default
// values.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// LoadConfig reads a .yml configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read file %v: %w", path, err)
	}
	return ParseConfig(data)
}
