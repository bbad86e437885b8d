//go:build !cgo

package midi

import "errors"

// Listen is unavailable without cgo, as the MIDI driver needs it.
func Listen(namePrefix string, c *Controller) (stop func(), err error) {
	return nil, errors.New("MIDI input needs a build with cgo enabled")
}
