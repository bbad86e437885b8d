// Package log provides the loggers used by the engine and the commands.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var debug bool

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv("NOVA_DEBUG"))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger writing to stderr. Debug messages are enabled
// by setting NOVA_DEBUG=1.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
