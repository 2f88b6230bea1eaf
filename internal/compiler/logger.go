package compiler

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger prints compilation progress when verbose mode is on. Logging
// never modifies the logger, so one Logger may serve concurrent compilations
// as long as its output accepts concurrent writes.
type Logger struct {
	enabled bool
	depth   int
	out     io.Writer
}

// NewLogger creates a logger writing to stderr.
func NewLogger(enabled bool) *Logger {
	return &Logger{
		enabled: enabled,
		out:     os.Stderr,
	}
}

// SetOutput sets the output writer for the logger. A nil writer keeps the
// current one. Call it before the logger is shared.
func (l *Logger) SetOutput(w io.Writer) {
	if w != nil {
		l.out = w
	}
}

// Log prints a formatted message if verbose mode is enabled.
func (l *Logger) Log(format string, args ...interface{}) {
	if l.enabled {
		fmt.Fprintf(l.out, "[lexengo] "+strings.Repeat("  ", l.depth)+format+"\n", args...)
	}
}

// Section prints a section header.
func (l *Logger) Section(name string) {
	if l.enabled {
		fmt.Fprintf(l.out, "\n[lexengo] === %s ===\n", name)
	}
}

// Indent returns a logger whose lines are nested one level deeper.
func (l *Logger) Indent() *Logger {
	nested := *l
	nested.depth++
	return &nested
}

// Enabled returns whether the logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}
