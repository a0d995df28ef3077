package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

// Level mirrors logrus levels, lower is more severe.
type Level uint32

const (
	PanicLevel Level = Level(logrus.PanicLevel)
	FatalLevel Level = Level(logrus.FatalLevel)
	ErrorLevel Level = Level(logrus.ErrorLevel)
	WarnLevel  Level = Level(logrus.WarnLevel)
	InfoLevel  Level = Level(logrus.InfoLevel)
	DebugLevel Level = Level(logrus.DebugLevel)
)

func init() {
	// Filtering is done per module, logrus must let everything through.
	logrus.SetLevel(logrus.DebugLevel)
}

var disabled bool

// Disable turns off all logging, whatever the level or module.
func Disable() {
	disabled = true
	modDebugMask = 0
	logrus.SetOutput(io.Discard)
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}
