// Package sqlite adapts the mattn/go-sqlite3 driver to the sqlbridge
// delegate contracts. It is the reference backend adapter: native
// result codes are remapped into the uniform error taxonomy, and a
// bounded busy-retry loop absorbs SQLite's single-writer locking so
// transient SQLITE_BUSY/SQLITE_LOCKED conditions never reach the
// caller.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/sqlbridge/sqlbridge/adapters/internal/stdsql"
	"github.com/sqlbridge/sqlbridge/db"
	"github.com/sqlbridge/sqlbridge/dburl"
)

func init() {
	dburl.Register("sqlite", Open)
}

// Open opens a SQLite database from a URL of the form
// sqlite:///path/to/file.db or sqlite::memory:. The maxrows query
// option caps the number of rows any query yields.
func Open(ctx context.Context, u *dburl.URL) (*db.Connection, error) {
	if u.Path == "" {
		return nil, fmt.Errorf("sqlite: url %q has no database path", u)
	}
	sqldb, err := sql.Open("sqlite3", u.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", u.Path, err)
	}
	// SQLite is single-writer; one session per connection keeps the
	// delegate on a stable native handle.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	delegate, err := stdsql.NewConnection(ctx, sqldb, dialect{}, stdsql.Options{
		MaxRows: u.IntOption("maxrows", 0),
		Retry:   stdsql.DefaultRetryPolicy(),
	})
	if err != nil {
		return nil, err
	}
	// Foreign keys are off by default in SQLite.
	if err := delegate.Execute(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		delegate.Close()
		return nil, err
	}
	return db.NewConnection(delegate), nil
}

type dialect struct{}

func (dialect) Name() string { return "sqlite" }

func (dialect) ParameterCount(query string) int {
	return stdsql.CountQuestionMarks(query)
}

// Retryable reports SQLITE_BUSY and SQLITE_LOCKED, the transient lock
// conditions of a single-writer engine.
func (dialect) Retryable(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
}

func (d dialect) TranslateError(op string, err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return &db.DatabaseError{Op: op, Cause: err}
	}
	var cond error
	switch {
	case se.ExtendedCode == sqlite3.ErrConstraintUnique,
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
		cond = db.ErrUniqueConstraint
	case se.ExtendedCode == sqlite3.ErrConstraintForeignKey:
		cond = db.ErrForeignKeyConstraint
	case se.ExtendedCode == sqlite3.ErrConstraintNotNull:
		cond = db.ErrNullConstraint
	case se.Code == sqlite3.ErrBusy, se.Code == sqlite3.ErrLocked:
		cond = db.ErrBusy
	default:
		return &db.DatabaseError{Op: op, Cause: err}
	}
	return &db.DatabaseError{Op: op, Cause: fmt.Errorf("%w: %v", cond, err)}
}
