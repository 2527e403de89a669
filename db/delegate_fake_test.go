package db

import (
	"context"
	"errors"
	"time"
)

// fakeResult is an in-memory ResultDelegate. A nil cell is SQL NULL.
type fakeResult struct {
	names   []string
	rows    [][][]byte
	pos     int
	nextErr error
	closed  bool
}

func (f *fakeResult) ColumnCount() int { return len(f.names) }

func (f *fakeResult) ColumnName(columnIndex int) (string, bool) {
	if columnIndex < 1 || columnIndex > len(f.names) {
		return "", false
	}
	return f.names[columnIndex-1], true
}

func (f *fakeResult) Next() (bool, error) {
	if f.nextErr != nil {
		return false, f.nextErr
	}
	if f.pos >= len(f.rows) {
		return false, nil
	}
	f.pos++
	return true, nil
}

func (f *fakeResult) IsNull(columnIndex int) (bool, error) {
	row, err := f.current()
	if err != nil {
		return false, err
	}
	return row[columnIndex-1] == nil, nil
}

func (f *fakeResult) Value(columnIndex int) ([]byte, error) {
	row, err := f.current()
	if err != nil {
		return nil, err
	}
	return row[columnIndex-1], nil
}

func (f *fakeResult) Close() error {
	f.closed = true
	return nil
}

func (f *fakeResult) current() ([][]byte, error) {
	if f.pos < 1 || f.pos > len(f.rows) {
		return nil, errors.New("no current row")
	}
	return f.rows[f.pos-1], nil
}

// cells builds one row; a nil entry marks SQL NULL.
func cells(values ...any) [][]byte {
	row := make([][]byte, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case nil:
			row[i] = nil
		case string:
			row[i] = []byte(v)
		case []byte:
			row[i] = v
		}
	}
	return row
}

// fakeStatement is an in-memory StatementDelegate recording bound
// parameters and handing out configured result delegates.
type fakeStatement struct {
	paramCount  int
	params      map[int]any
	results     []*fakeResult
	execErr     error
	returnNil   bool
	rowsChanged int64
	execs       int
	queries     int
	closed      bool
}

func newFakeStatement(paramCount int) *fakeStatement {
	return &fakeStatement{paramCount: paramCount, params: make(map[int]any)}
}

func (f *fakeStatement) bind(parameterIndex int, v any) error {
	if parameterIndex < 1 || parameterIndex > f.paramCount {
		return &OutOfRangeError{Op: "bind", What: "parameter", Index: parameterIndex, Count: f.paramCount}
	}
	f.params[parameterIndex] = v
	return nil
}

func (f *fakeStatement) SetString(i int, v string) error       { return f.bind(i, v) }
func (f *fakeStatement) SetInt8(i int, v int8) error           { return f.bind(i, v) }
func (f *fakeStatement) SetUint8(i int, v uint8) error         { return f.bind(i, v) }
func (f *fakeStatement) SetInt16(i int, v int16) error         { return f.bind(i, v) }
func (f *fakeStatement) SetUint16(i int, v uint16) error       { return f.bind(i, v) }
func (f *fakeStatement) SetInt32(i int, v int32) error         { return f.bind(i, v) }
func (f *fakeStatement) SetUint32(i int, v uint32) error       { return f.bind(i, v) }
func (f *fakeStatement) SetInt64(i int, v int64) error         { return f.bind(i, v) }
func (f *fakeStatement) SetUint64(i int, v uint64) error       { return f.bind(i, v) }
func (f *fakeStatement) SetFloat64(i int, v float64) error     { return f.bind(i, v) }
func (f *fakeStatement) SetBlob(i int, v []byte) error         { return f.bind(i, v) }
func (f *fakeStatement) SetTimestamp(i int, v time.Time) error { return f.bind(i, v) }

func (f *fakeStatement) Execute(ctx context.Context) error {
	f.execs++
	return f.execErr
}

func (f *fakeStatement) ExecuteQuery(ctx context.Context) (ResultDelegate, error) {
	f.queries++
	if f.execErr != nil {
		return nil, f.execErr
	}
	if f.returnNil || len(f.results) == 0 {
		return nil, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func (f *fakeStatement) RowsChanged() int64  { return f.rowsChanged }
func (f *fakeStatement) ParameterCount() int { return f.paramCount }

func (f *fakeStatement) Close() error {
	f.closed = true
	return nil
}

// fakeConnection is an in-memory ConnectionDelegate recording calls.
type fakeConnection struct {
	statements []*fakeStatement
	result     *fakeResult
	calls      []string
	closed     bool
}

func (f *fakeConnection) Prepare(ctx context.Context, query string) (StatementDelegate, error) {
	f.calls = append(f.calls, "prepare")
	st := newFakeStatement(0)
	f.statements = append(f.statements, st)
	return st, nil
}

func (f *fakeConnection) Execute(ctx context.Context, query string) error {
	f.calls = append(f.calls, "execute")
	return nil
}

func (f *fakeConnection) ExecuteQuery(ctx context.Context, query string) (ResultDelegate, error) {
	f.calls = append(f.calls, "executeQuery")
	if f.result == nil {
		return nil, nil
	}
	return f.result, nil
}

func (f *fakeConnection) Begin(ctx context.Context) error {
	f.calls = append(f.calls, "begin")
	return nil
}
func (f *fakeConnection) Commit(ctx context.Context) error {
	f.calls = append(f.calls, "commit")
	return nil
}
func (f *fakeConnection) Rollback(ctx context.Context) error {
	f.calls = append(f.calls, "rollback")
	return nil
}
func (f *fakeConnection) Ping(ctx context.Context) error {
	f.calls = append(f.calls, "ping")
	return nil
}

func (f *fakeConnection) Close() error {
	f.closed = true
	return nil
}
