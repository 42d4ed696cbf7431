package dare

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewSilentLogger returns a logger with output discarded, the default a
// fresh Encoder/Decoder starts with. Passing nil to SetLogger has the same
// effect.
func NewSilentLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// nopLogger is what Encoder/Decoder fall back to when no logger was set,
// so call sites never need a nil check.
var nopLogger = NewSilentLogger()

func useLogger(l *log.Logger) *log.Logger {
	if l == nil {
		return nopLogger
	}
	return l
}
