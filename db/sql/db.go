// Package sql runs queries against a SQL database.
package sql

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"
)

type (
	// Database runs queries on a sql database, cancelling those that take too long.
	Database struct {
		DB *sql.DB
		DatabaseConfig
	}

	// DatabaseConfig contains the properties to connect to a sql database.
	DatabaseConfig struct {
		// DriverName is the name of the registered sql driver to connect with.
		DriverName string
		// DatabaseURL is the url of the database to connect to.
		DatabaseURL string
		// QueryPeriod is the amount of time each query can take before it is cancelled.
		QueryPeriod time.Duration
	}
)

// ErrNoRows is returned when a query matches no rows.
var ErrNoRows = sql.ErrNoRows

// NewDatabase opens a sql database from the configuration.
func (cfg DatabaseConfig) NewDatabase() (*Database, error) {
	if cfg.QueryPeriod <= 0 {
		return nil, fmt.Errorf("creating sql database: positive query period required")
	}
	db, err := sql.Open(cfg.DriverName, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening sql database: %w", err)
	}
	d := Database{
		DB:             db,
		DatabaseConfig: cfg,
	}
	return &d, nil
}

// Setup initializes the database by executing the contents of the files as raw queries.
func (d Database) Setup(ctx context.Context, files []io.Reader) error {
	queries := make([]Query, len(files))
	for i, f := range files {
		b, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("reading setup query %v: %w", i, err)
		}
		queries[i] = RawQuery(b)
	}
	if err := d.Exec(ctx, queries...); err != nil {
		return fmt.Errorf("running setup queries: %w", err)
	}
	return nil
}

// Query runs the query for a single row, scanning into the destination arguments.
func (d Database) Query(ctx context.Context, q Query, dest ...interface{}) error {
	ctx, cancelFunc := context.WithTimeout(ctx, d.QueryPeriod)
	defer cancelFunc()
	row := d.DB.QueryRowContext(ctx, q.Cmd(), q.Args()...)
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("scanning query row: %w", err)
	}
	return nil
}

// Exec evaluates the queries in a transaction, requiring each exec function to update exactly one row.
func (d Database) Exec(ctx context.Context, queries ...Query) error {
	ctx, cancelFunc := context.WithTimeout(ctx, d.QueryPeriod)
	defer cancelFunc()
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	for i, q := range queries {
		if err := execQuery(ctx, tx, q); err != nil {
			err = fmt.Errorf("executing query %v: %w", i, err)
			if err2 := tx.Rollback(); err2 != nil {
				return fmt.Errorf("rolling back transaction due to %v: %w", err, err2)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// execQuery runs the query on the transaction.
func execQuery(ctx context.Context, tx *sql.Tx, q Query) error {
	result, err := tx.ExecContext(ctx, q.Cmd(), q.Args()...)
	if err != nil {
		return err
	}
	f, ok := q.(ExecFunction)
	if !ok {
		return nil
	}
	n, err := result.RowsAffected()
	switch {
	case err != nil:
		return err
	case n != 1:
		return fmt.Errorf("wanted to update 1 row, but updated %d when calling %s", n, f.name)
	}
	return nil
}
