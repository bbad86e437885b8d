package synth

import (
	"errors"
	"fmt"

	"github.com/novasynth/nova"
	"github.com/novasynth/nova/log"
	"github.com/sirupsen/logrus"
)

// World is the engine wide context the instances are built in: the fixed
// rates, the audio and control buses, the unit factory, the allocator and the
// logger.
type World struct {
	Config   nova.Config
	FullRate nova.Rate
	BufRate  nova.Rate

	// AudioBus holds AudioBuses channels of BlockSize samples each.
	AudioBus []float32

	// ControlBus holds one value per control bus. Mapped controls read from
	// here.
	ControlBus []float32

	factory   UnitFactory
	allocator Allocator
	log       logrus.FieldLogger
}

// Option provides a way to set functional parameters to the world.
type Option func(w *World) error

// NewWorld creates a world for the configuration. Units are built with the
// given factory.
func NewWorld(cfg nova.Config, factory UnitFactory, options ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if factory == nil {
		return nil, errors.New("world needs a unit factory")
	}
	w := &World{
		Config:     cfg,
		FullRate:   cfg.FullRate(),
		BufRate:    cfg.BufRate(),
		AudioBus:   make([]float32, cfg.AudioBuses*cfg.BlockSize),
		ControlBus: make([]float32, cfg.ControlBuses),
		factory:    factory,
		log:        log.GetLogger(),
	}
	if cfg.PoolSize > 0 {
		w.allocator = NewPool(cfg.PoolSize)
	} else {
		w.allocator = HeapAllocator{}
	}
	for _, option := range options {
		if err := option(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// WithLogger sets the logger of the world.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *World) error {
		w.log = logger
		return nil
	}
}

// WithAllocator sets the allocator the instances and units get their memory
// from.
func WithAllocator(a Allocator) Option {
	return func(w *World) error {
		if a == nil {
			return errors.New("allocator cannot be nil")
		}
		w.allocator = a
		return nil
	}
}

func (w *World) Allocator() Allocator       { return w.allocator }
func (w *World) Factory() UnitFactory       { return w.factory }
func (w *World) Logger() logrus.FieldLogger { return w.log }

// AudioBusChannel returns the block of samples of one audio bus.
func (w *World) AudioBusChannel(bus int) []float32 {
	n := w.Config.BlockSize
	return w.AudioBus[bus*n : (bus+1)*n : (bus+1)*n]
}

// ClearAudioBuses zeroes the audio buses; called before every block.
func (w *World) ClearAudioBuses() {
	clear(w.AudioBus)
}

// SetControlBus sets the value of a control bus.
func (w *World) SetControlBus(bus int, value float32) {
	w.ControlBus[bus] = value
}
