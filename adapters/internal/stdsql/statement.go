package stdsql

import (
	"context"
	"database/sql"
	"time"

	"github.com/sqlbridge/sqlbridge/db"
)

// Statement implements db.StatementDelegate over *sql.Stmt. Bound
// parameters are kept in positional slots sized by the dialect's
// placeholder count; an unbound slot is passed to the driver as SQL
// NULL.
type Statement struct {
	stmt        *sql.Stmt
	dialect     Dialect
	params      []any
	paramCount  int
	rowsChanged int64
	maxRows     int
	retry       RetryPolicy
}

// NewStatement wraps a prepared driver statement. query is the SQL
// text it was prepared from; the dialect derives the parameter count
// from it.
func NewStatement(stmt *sql.Stmt, query string, dialect Dialect, maxRows int, retry RetryPolicy) *Statement {
	n := dialect.ParameterCount(query)
	return &Statement{
		stmt:       stmt,
		dialect:    dialect,
		params:     make([]any, n),
		paramCount: n,
		maxRows:    maxRows,
		retry:      retry,
	}
}

func (s *Statement) bind(op string, parameterIndex int, v any) error {
	if parameterIndex < 1 || parameterIndex > s.paramCount {
		return &db.OutOfRangeError{Op: op, What: "parameter", Index: parameterIndex, Count: s.paramCount}
	}
	s.params[parameterIndex-1] = v
	return nil
}

func (s *Statement) SetString(parameterIndex int, v string) error {
	return s.bind("SetString", parameterIndex, v)
}

func (s *Statement) SetInt8(parameterIndex int, v int8) error {
	return s.bind("SetInt8", parameterIndex, int64(v))
}

func (s *Statement) SetUint8(parameterIndex int, v uint8) error {
	return s.bind("SetUint8", parameterIndex, int64(v))
}

func (s *Statement) SetInt16(parameterIndex int, v int16) error {
	return s.bind("SetInt16", parameterIndex, int64(v))
}

func (s *Statement) SetUint16(parameterIndex int, v uint16) error {
	return s.bind("SetUint16", parameterIndex, int64(v))
}

func (s *Statement) SetInt32(parameterIndex int, v int32) error {
	return s.bind("SetInt32", parameterIndex, int64(v))
}

func (s *Statement) SetUint32(parameterIndex int, v uint32) error {
	return s.bind("SetUint32", parameterIndex, int64(v))
}

func (s *Statement) SetInt64(parameterIndex int, v int64) error {
	return s.bind("SetInt64", parameterIndex, v)
}

func (s *Statement) SetUint64(parameterIndex int, v uint64) error {
	return s.bind("SetUint64", parameterIndex, v)
}

func (s *Statement) SetFloat64(parameterIndex int, v float64) error {
	return s.bind("SetFloat64", parameterIndex, v)
}

func (s *Statement) SetBlob(parameterIndex int, v []byte) error {
	return s.bind("SetBlob", parameterIndex, v)
}

func (s *Statement) SetTimestamp(parameterIndex int, v time.Time) error {
	return s.bind("SetTimestamp", parameterIndex, v)
}

// Execute runs the statement without producing rows, retrying
// transient lock conditions per the adapter's policy.
func (s *Statement) Execute(ctx context.Context) error {
	var res sql.Result
	err := withRetry(ctx, s.dialect, s.retry, "Execute", func() error {
		var err error
		res, err = s.stmt.ExecContext(ctx, s.params...)
		return err
	})
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil {
		s.rowsChanged = n
	} else {
		s.rowsChanged = 0
	}
	return nil
}

// ExecuteQuery runs the statement and returns a cursor over the
// produced rows, retrying transient lock conditions per the adapter's
// policy.
func (s *Statement) ExecuteQuery(ctx context.Context) (db.ResultDelegate, error) {
	var rows *sql.Rows
	err := withRetry(ctx, s.dialect, s.retry, "ExecuteQuery", func() error {
		var err error
		rows, err = s.stmt.QueryContext(ctx, s.params...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewRows(rows, s.dialect, s.maxRows)
}

// RowsChanged returns the affected-row count of the last Execute.
func (s *Statement) RowsChanged() int64 {
	return s.rowsChanged
}

// ParameterCount returns the number of bindable positions.
func (s *Statement) ParameterCount() int {
	return s.paramCount
}

// Close releases the prepared driver statement.
func (s *Statement) Close() error {
	return s.stmt.Close()
}
