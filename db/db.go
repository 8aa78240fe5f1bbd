// Package db configures access to the storage backends that keep user records between server restarts.
package db

import (
	"fmt"
	"time"
)

// Config contains shared properties for database backends.
type Config struct {
	// QueryPeriod is the amount of time each database operation can take before it is cancelled.
	QueryPeriod time.Duration
}

// Validate ensures the configuration has no errors.
func (cfg Config) Validate() error {
	if cfg.QueryPeriod <= 0 {
		return fmt.Errorf("positive query period required")
	}
	return nil
}
