// Package logging provides the verbosity-gated diagnostic output the CLI
// prints during training/mapping. It wraps the standard library's log
// package directly, the same way qubicDB-qubicdb/cmd/qubicdb/main.go logs
// startup/shutdown events with plain log.Printf calls -- no structured
// logging framework is pulled in anywhere in the pack for this concern.
package logging

import "log"

// Logger gates Debugf output behind a verbose flag; Infof and Errorf are
// always printed.
type Logger struct {
	Verbose bool
}

// New returns a Logger with the given verbosity.
func New(verbose bool) *Logger {
	return &Logger{Verbose: verbose}
}

// Infof logs an unconditional informational message.
func (l *Logger) Infof(format string, args ...any) {
	log.Printf(format, args...)
}

// Debugf logs a message only when the logger is verbose.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || !l.Verbose {
		return
	}
	log.Printf(format, args...)
}

// Errorf logs an unconditional error message.
func (l *Logger) Errorf(format string, args ...any) {
	log.Printf("error: "+format, args...)
}
