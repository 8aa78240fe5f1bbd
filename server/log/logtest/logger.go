// Package logtest implements Loggers for use in tests.
package logtest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/polyfall-game/polyfall/server/log"
)

// DiscardLogger is a Logger that drops every message.
var DiscardLogger = new(discardLogger)

// discardLogger logs nothing.
type discardLogger struct{}

var _ log.Logger = DiscardLogger

// Printf implements the log.Logger interface by doing nothing.
func (discardLogger) Printf(format string, v ...interface{}) {
	// NOOP
}

// Logger records formatted messages in a buffer so tests can inspect them.
// The zero value is ready to use.
type Logger struct {
	mu  sync.RWMutex
	buf bytes.Buffer
}

var _ log.Logger = NewLogger()

// NewLogger creates a recording Logger.
func NewLogger() *Logger {
	return new(Logger)
}

// Printf implements the log.Logger interface.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(&l.buf, format, v...)
}

// String returns everything that has been logged.
func (l *Logger) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf.String()
}

// Empty reports whether nothing has been logged.
func (l *Logger) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf.Len() == 0
}
