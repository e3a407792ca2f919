// Package logging wraps charmbracelet/log behind a small Logger type shared
// by every component that performs I/O.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is a thin wrapper around log.Logger.
type Logger struct {
	*log.Logger
}

// New creates a logger writing to stderr. Setting DEBUG=1 in the environment
// enables debug level with caller and timestamp reporting.
func New() *Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a logger writing to w. Used by tests to capture
// output.
func NewWithWriter(w io.Writer) *Logger {
	var base *log.Logger
	if os.Getenv("DEBUG") == "1" {
		base = log.NewWithOptions(w, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			Prefix:          "droply",
		})
		base.SetLevel(log.DebugLevel)
	} else {
		base = log.New(w)
		base.SetLevel(log.InfoLevel)
	}
	return &Logger{Logger: base}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	base := log.New(io.Discard)
	base.SetLevel(log.FatalLevel)
	return &Logger{Logger: base}
}

// With returns a logger carrying additional key/value context.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{Logger: l.Logger.With(keyvals...)}
}
