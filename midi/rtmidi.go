//go:build cgo

package midi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Listen opens the first MIDI input whose name starts with namePrefix and
// feeds its messages to c. The returned function stops listening and closes
// the driver.
func Listen(namePrefix string, c *Controller) (stop func(), err error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open MIDI driver: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	var in drivers.In
	for _, candidate := range ins {
		if strings.HasPrefix(candidate.String(), namePrefix) {
			in = candidate
			break
		}
	}
	if in == nil {
		driver.Close()
		return nil, fmt.Errorf("no MIDI input starting with %q", namePrefix)
	}
	if err := in.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stopListening, err := midi.ListenTo(in, c.HandleMessage)
	if err != nil {
		in.Close()
		driver.Close()
		return nil, errors.Join(errors.New("cannot listen to MIDI input"), err)
	}
	c.log.WithField("input", in.String()).Info("listening to MIDI input")
	return func() {
		stopListening()
		in.Close()
		driver.Close()
	}, nil
}
