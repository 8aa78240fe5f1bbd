package sql

import (
	"fmt"
	"strings"
)

type (
	// Query is a command that is sent to the database.
	Query interface {
		// Cmd is the injection-safe command to send to the database.
		Cmd() string
		// Args are the user-provided arguments of the command, which must be escaped.
		Args() []interface{}
	}

	// QueryFunction is a Query that reads data by calling a sql function.
	QueryFunction struct {
		name      string
		cols      []string
		arguments []interface{}
	}

	// ExecFunction is a Query that changes data by calling a sql function.
	ExecFunction struct {
		name      string
		arguments []interface{}
	}

	// RawQuery is a Query that has no arguments.
	RawQuery string
)

// NewQueryFunction creates a Query to call a query function.
func NewQueryFunction(name string, cols []string, args ...interface{}) QueryFunction {
	q := QueryFunction{
		name:      name,
		cols:      cols,
		arguments: args,
	}
	return q
}

// NewExecFunction creates a Query to call an exec function.
func NewExecFunction(name string, args ...interface{}) ExecFunction {
	e := ExecFunction{
		name:      name,
		arguments: args,
	}
	return e
}

// argPlaceholders creates the numbered sql argument placeholders for n arguments.
func argPlaceholders(n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(placeholders, ", ")
}

// Cmd returns a sql string to select the columns from the query function.
func (q QueryFunction) Cmd() string {
	return fmt.Sprintf("SELECT %s FROM %s(%s)", strings.Join(q.cols, ", "), q.name, argPlaceholders(len(q.arguments)))
}

// Args returns the arguments for the query function.
func (q QueryFunction) Args() []interface{} {
	return q.arguments
}

// Cmd returns a sql string to call the exec function.
func (e ExecFunction) Cmd() string {
	return fmt.Sprintf("SELECT %s(%s)", e.name, argPlaceholders(len(e.arguments)))
}

// Args returns the arguments for the exec function.
func (e ExecFunction) Args() []interface{} {
	return e.arguments
}

// Cmd returns the raw sql query.
func (r RawQuery) Cmd() string {
	return string(r)
}

// Args returns nil, raw queries have no arguments.
func (RawQuery) Args() []interface{} {
	return nil
}
