package stdsql

import (
	"database/sql"
	"errors"
)

// errNoRow is reported when a value is requested with the cursor
// positioned before the first row or after the last.
var errNoRow = errors.New("no current row")

// Rows implements db.ResultDelegate over *sql.Rows. Every column is
// scanned into sql.RawBytes, whose contents are owned by the driver
// and overwritten on the next Next — the exact borrowed-buffer
// lifetime the ResultSet contract documents.
type Rows struct {
	rows    *sql.Rows
	dialect Dialect
	names   []string
	raw     []sql.RawBytes
	dest    []any
	maxRows int
	seen    int
	current bool
}

// NewRows wraps a driver cursor. maxRows > 0 caps the number of rows
// the cursor will yield.
func NewRows(rows *sql.Rows, dialect Dialect, maxRows int) (*Rows, error) {
	names, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, dialect.TranslateError("Columns", err)
	}
	raw := make([]sql.RawBytes, len(names))
	dest := make([]any, len(names))
	for i := range raw {
		dest[i] = &raw[i]
	}
	return &Rows{
		rows:    rows,
		dialect: dialect,
		names:   names,
		raw:     raw,
		dest:    dest,
		maxRows: maxRows,
	}, nil
}

// ColumnCount returns the number of columns.
func (r *Rows) ColumnCount() int {
	return len(r.names)
}

// ColumnName returns the declared name of the 1-based column.
func (r *Rows) ColumnName(columnIndex int) (string, bool) {
	if columnIndex < 1 || columnIndex > len(r.names) {
		return "", false
	}
	return r.names[columnIndex-1], true
}

// Next advances the cursor and scans the row into the raw buffers.
func (r *Rows) Next() (bool, error) {
	if r.maxRows > 0 && r.seen >= r.maxRows {
		r.current = false
		return false, nil
	}
	if !r.rows.Next() {
		r.current = false
		if err := r.rows.Err(); err != nil {
			return false, r.dialect.TranslateError("Next", err)
		}
		return false, nil
	}
	if err := r.rows.Scan(r.dest...); err != nil {
		r.current = false
		return false, r.dialect.TranslateError("Next", err)
	}
	r.seen++
	r.current = true
	return true, nil
}

// IsNull reports whether the 1-based column of the current row holds
// SQL NULL. database/sql leaves a RawBytes nil for NULL.
func (r *Rows) IsNull(columnIndex int) (bool, error) {
	if !r.current {
		return false, errNoRow
	}
	return r.raw[columnIndex-1] == nil, nil
}

// Value returns the raw bytes of the 1-based column of the current
// row, nil for SQL NULL. The slice is valid until the next Next or
// Close.
func (r *Rows) Value(columnIndex int) ([]byte, error) {
	if !r.current {
		return nil, errNoRow
	}
	return []byte(r.raw[columnIndex-1]), nil
}

// Close releases the driver cursor.
func (r *Rows) Close() error {
	r.current = false
	return r.rows.Close()
}
