package db

import (
	"context"
	"time"
)

// PreparedStatement represents a SQL statement compiled once by the
// backend and executed any number of times with positional parameters.
// Parameters are numbered from 1 and bound with the typed Set methods;
// the values are forwarded verbatim to the backend delegate, which
// owns encoding and escaping.
//
// A statement owns at most one live ResultSet. Entering Execute or
// ExecuteQuery first closes the ResultSet from the prior execution, so
// a caller holding the old set sees ErrResultSetClosed rather than a
// freed cursor. Close releases the current ResultSet and then the
// backend statement handle.
//
// A PreparedStatement is reentrant, but not thread-safe, and should
// only be used by one goroutine at a time.
type PreparedStatement struct {
	delegate  StatementDelegate
	resultSet *ResultSet
	closed    bool
}

// NewPreparedStatement wraps a backend statement delegate. It is
// called by Connection.Prepare; applications do not construct
// statements directly.
func NewPreparedStatement(delegate StatementDelegate) *PreparedStatement {
	return &PreparedStatement{delegate: delegate}
}

// Close invalidates any live ResultSet and releases the backend
// statement handle. Closing an already-closed statement is a no-op.
func (p *PreparedStatement) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.clearResultSet()
	return p.delegate.Close()
}

// SetString binds a string value to the 1-based parameter.
func (p *PreparedStatement) SetString(parameterIndex int, v string) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetString(parameterIndex, v)
}

// SetInt8 binds an int8 value to the 1-based parameter.
func (p *PreparedStatement) SetInt8(parameterIndex int, v int8) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetInt8(parameterIndex, v)
}

// SetUint8 binds a uint8 value to the 1-based parameter.
func (p *PreparedStatement) SetUint8(parameterIndex int, v uint8) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetUint8(parameterIndex, v)
}

// SetInt16 binds an int16 value to the 1-based parameter.
func (p *PreparedStatement) SetInt16(parameterIndex int, v int16) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetInt16(parameterIndex, v)
}

// SetUint16 binds a uint16 value to the 1-based parameter.
func (p *PreparedStatement) SetUint16(parameterIndex int, v uint16) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetUint16(parameterIndex, v)
}

// SetInt32 binds an int32 value to the 1-based parameter.
func (p *PreparedStatement) SetInt32(parameterIndex int, v int32) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetInt32(parameterIndex, v)
}

// SetUint32 binds a uint32 value to the 1-based parameter.
func (p *PreparedStatement) SetUint32(parameterIndex int, v uint32) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetUint32(parameterIndex, v)
}

// SetInt64 binds an int64 value to the 1-based parameter.
func (p *PreparedStatement) SetInt64(parameterIndex int, v int64) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetInt64(parameterIndex, v)
}

// SetUint64 binds a uint64 value to the 1-based parameter.
func (p *PreparedStatement) SetUint64(parameterIndex int, v uint64) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetUint64(parameterIndex, v)
}

// SetFloat64 binds a float64 value to the 1-based parameter.
func (p *PreparedStatement) SetFloat64(parameterIndex int, v float64) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetFloat64(parameterIndex, v)
}

// SetBlob binds raw bytes to the 1-based parameter. The statement does
// not copy the slice; it must stay unchanged until the next execution.
func (p *PreparedStatement) SetBlob(parameterIndex int, v []byte) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetBlob(parameterIndex, v)
}

// SetTimestamp binds a point in time to the 1-based parameter.
func (p *PreparedStatement) SetTimestamp(parameterIndex int, v time.Time) error {
	if p.closed {
		return ErrStatementClosed
	}
	return p.delegate.SetTimestamp(parameterIndex, v)
}

// Execute runs the statement without producing rows, for DML and DDL.
// Any ResultSet from a prior execution is invalidated first. Use
// RowsChanged for the number of affected rows.
func (p *PreparedStatement) Execute(ctx context.Context) error {
	if p.closed {
		return ErrStatementClosed
	}
	p.clearResultSet()
	return p.delegate.Execute(ctx)
}

// ExecuteQuery runs the statement and returns a ResultSet over the
// produced rows. Any ResultSet from a prior execution is invalidated
// first; a statement never holds two result sets at once. A query
// matching zero rows is a valid ResultSet whose first Next returns
// false — a backend returning no cursor at all is reported as an
// ExecutionError.
func (p *PreparedStatement) ExecuteQuery(ctx context.Context) (*ResultSet, error) {
	if p.closed {
		return nil, ErrStatementClosed
	}
	p.clearResultSet()
	delegate, err := p.delegate.ExecuteQuery(ctx)
	if err != nil {
		return nil, err
	}
	if delegate == nil {
		return nil, &ExecutionError{Op: "ExecuteQuery", Cause: ErrNoResultHandle}
	}
	p.resultSet = NewResultSet(delegate)
	return p.resultSet, nil
}

// RowsChanged returns the number of rows affected by the last Execute.
// The value is meaningless after a query and is forwarded as-is from
// the backend.
func (p *PreparedStatement) RowsChanged() int64 {
	if p.closed {
		return 0
	}
	return p.delegate.RowsChanged()
}

// ParameterCount returns the number of bindable positions in the
// prepared SQL text.
func (p *PreparedStatement) ParameterCount() int {
	if p.closed {
		return 0
	}
	return p.delegate.ParameterCount()
}

func (p *PreparedStatement) clearResultSet() {
	if p.resultSet != nil {
		p.resultSet.Close()
		p.resultSet = nil
	}
}
