// Package log provides an abstraction over log.Logger so all parts of the server share one sink.
package log

// Logger writes diagnostic messages.
type Logger interface {
	// Printf writes the formatted string with values to the logger.
	// Arguments are handled in the manner of fmt.Printf.
	Printf(format string, v ...interface{})
}
