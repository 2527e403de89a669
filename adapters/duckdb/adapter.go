// Package duckdb adapts the duckdb-go driver to the sqlbridge delegate
// contracts. DuckDB is an embedded analytics engine; an empty database
// path opens an in-memory database.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver

	"github.com/sqlbridge/sqlbridge/adapters/internal/stdsql"
	"github.com/sqlbridge/sqlbridge/db"
	"github.com/sqlbridge/sqlbridge/dburl"
)

func init() {
	dburl.Register("duckdb", Open)
}

// Open opens a DuckDB database from a URL of the form
// duckdb:///path/to/file.duckdb, or duckdb:// for an in-memory
// database.
func Open(ctx context.Context, u *dburl.URL) (*db.Connection, error) {
	sqldb, err := sql.Open("duckdb", u.Path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open %q: %w", u.Path, err)
	}
	// Embedded engine, one session per connection.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	delegate, err := stdsql.NewConnection(ctx, sqldb, dialect{}, stdsql.Options{
		MaxRows: u.IntOption("maxrows", 0),
	})
	if err != nil {
		return nil, err
	}
	return db.NewConnection(delegate), nil
}

type dialect struct{}

func (dialect) Name() string { return "duckdb" }

func (dialect) ParameterCount(query string) int {
	return stdsql.CountQuestionMarks(query)
}

// The duckdb driver exposes no structured error codes; nothing is
// classified as retryable.
func (dialect) Retryable(err error) bool { return false }

func (dialect) TranslateError(op string, err error) error {
	return &db.DatabaseError{Op: op, Cause: err}
}
