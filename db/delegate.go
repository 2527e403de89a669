package db

import (
	"context"
	"time"
)

// ResultDelegate is the capability set a backend result cursor must
// implement. The core ResultSet performs all index validation, by-name
// lookup and type coercion; a delegate only exposes raw row access.
//
// The method set is the backend's operations table: it is fixed per
// backend implementation and shared read-only by every ResultSet of
// that backend. The implementing value itself is exclusively owned by
// the ResultSet that wraps it.
type ResultDelegate interface {
	// ColumnCount returns the number of columns, fixed for the lifetime
	// of the cursor.
	ColumnCount() int

	// ColumnName returns the declared name of the 1-based column, or
	// false if the index is out of range.
	ColumnName(columnIndex int) (string, bool)

	// Next advances the cursor one row. It returns false with a nil
	// error when the set is exhausted, and an error on backend failure.
	// Any deadline governing the cursor was captured when the query was
	// executed, as with database/sql.
	Next() (bool, error)

	// IsNull reports whether the 1-based column of the current row holds
	// SQL NULL.
	IsNull(columnIndex int) (bool, error)

	// Value returns the raw byte representation of the 1-based column of
	// the current row, or nil for SQL NULL. The returned slice borrows
	// the delegate's row buffer and is valid only until the next call to
	// Next or Close; callers copy to retain it.
	Value(columnIndex int) ([]byte, error)

	// Close releases the native cursor.
	Close() error
}

// StatementDelegate is the capability set a backend prepared statement
// must implement. Parameter setters receive the value verbatim; the
// backend is responsible for its own encoding and escaping. Parameter
// indices are 1-based and the delegate reports an out-of-range index
// as a binding error.
type StatementDelegate interface {
	SetString(parameterIndex int, v string) error
	SetInt8(parameterIndex int, v int8) error
	SetUint8(parameterIndex int, v uint8) error
	SetInt16(parameterIndex int, v int16) error
	SetUint16(parameterIndex int, v uint16) error
	SetInt32(parameterIndex int, v int32) error
	SetUint32(parameterIndex int, v uint32) error
	SetInt64(parameterIndex int, v int64) error
	SetUint64(parameterIndex int, v uint64) error
	SetFloat64(parameterIndex int, v float64) error
	SetBlob(parameterIndex int, v []byte) error
	SetTimestamp(parameterIndex int, v time.Time) error

	// Execute runs the statement without producing rows.
	Execute(ctx context.Context) error

	// ExecuteQuery runs the statement and returns a cursor over the
	// produced rows. A query with zero result rows still returns a valid
	// delegate whose first Next reports false; a nil delegate with a nil
	// error is a contract violation the core reports as ExecutionError.
	ExecuteQuery(ctx context.Context) (ResultDelegate, error)

	// RowsChanged returns the number of rows affected by the last DML
	// execution. The value is meaningless after a query and is forwarded
	// as-is.
	RowsChanged() int64

	// ParameterCount returns the number of bindable positions in the
	// prepared SQL text.
	ParameterCount() int

	// Close releases the native statement handle.
	Close() error
}

// ConnectionDelegate is the capability set a backend connection must
// implement. Transaction verbs are pass-through; this layer owns no
// transaction coordination logic.
type ConnectionDelegate interface {
	// Prepare compiles the SQL text into a backend statement handle.
	Prepare(ctx context.Context, query string) (StatementDelegate, error)

	// Execute runs the SQL text directly, without parameters.
	Execute(ctx context.Context, query string) error

	// ExecuteQuery runs the SQL text directly and returns a row cursor.
	ExecuteQuery(ctx context.Context, query string) (ResultDelegate, error)

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Ping verifies the backend session is alive.
	Ping(ctx context.Context) error

	// Close releases the backend session.
	Close() error
}
