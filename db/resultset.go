package db

import (
	"strconv"
	"strings"
	"time"

	"github.com/sqlbridge/sqlbridge/dbtime"
)

// ResultSet represents a database result set created by executing a
// query. It maintains a cursor initially positioned before the first
// row; Next moves the cursor forward and returns false when no more
// rows exist, so it can drive a plain for loop:
//
//	rs, err := stmt.ExecuteQuery(ctx)
//	...
//	for {
//		ok, err := rs.Next()
//		if err != nil || !ok {
//			break
//		}
//		name, err := rs.GetStringByName("name")
//		...
//	}
//
// The cursor moves forward only; a ResultSet is consumed exactly once
// per execution. Columns are numbered from 1. Values are stored
// internally as raw bytes and converted on the fly when a typed getter
// is called; if a value cannot be converted to the requested type the
// getter returns a ConversionError.
//
// Column names used for by-name getters are case-sensitive. When
// several columns share a name, the first (lowest-index) matching
// column wins.
//
// A ResultSet is reentrant, but not thread-safe, and should only be
// used by one goroutine at a time.
type ResultSet struct {
	delegate    ResultDelegate
	columnCount int
	exhausted   bool
	closed      bool
}

// NewResultSet wraps a backend result delegate. It is called by
// PreparedStatement and Connection when a query executes; applications
// do not construct result sets directly.
func NewResultSet(delegate ResultDelegate) *ResultSet {
	return &ResultSet{
		delegate:    delegate,
		columnCount: delegate.ColumnCount(),
	}
}

// Close releases the underlying cursor. Closing an already-closed
// ResultSet is a no-op. After Close every other method reports
// ErrResultSetClosed.
func (r *ResultSet) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.delegate.Close()
}

// ColumnCount returns the number of columns in this ResultSet. The
// count is fixed for the lifetime of the set.
func (r *ResultSet) ColumnCount() int {
	return r.columnCount
}

// ColumnName returns the designated column's name, or false if the
// index is outside [1, ColumnCount]. This is a non-throwing probe; use
// ColumnCount to test for column availability.
func (r *ResultSet) ColumnName(columnIndex int) (string, bool) {
	if r.closed || columnIndex < 1 || columnIndex > r.columnCount {
		return "", false
	}
	return r.delegate.ColumnName(columnIndex)
}

// ColumnSize returns the size in bytes of the raw representation of
// the current row's value in the designated column. No type conversion
// occurs; for a number the size of its textual form is returned. SQL
// NULL yields 0.
func (r *ResultSet) ColumnSize(columnIndex int) (int64, error) {
	raw, err := r.value("ColumnSize", columnIndex)
	if err != nil {
		return 0, err
	}
	return int64(len(raw)), nil
}

// Next moves the cursor one row forward. The first call makes the
// first row current. Next returns false when there are no more rows;
// an empty ResultSet returns false on the first call. Once exhausted,
// further calls keep returning false without error. A backend failure
// is reported as a DatabaseError, never as a silent false.
func (r *ResultSet) Next() (bool, error) {
	if r.closed {
		return false, ErrResultSetClosed
	}
	if r.exhausted {
		return false, nil
	}
	ok, err := r.delegate.Next()
	if err != nil {
		return false, &DatabaseError{Op: "Next", Cause: err}
	}
	if !ok {
		r.exhausted = true
	}
	return ok, nil
}

// IsNull reports whether the designated column of the current row
// holds SQL NULL. For SQL NULL the typed getters return the type's
// zero value, an empty string or a nil blob; use IsNull when that
// distinction matters.
func (r *ResultSet) IsNull(columnIndex int) (bool, error) {
	if err := r.check("IsNull", columnIndex); err != nil {
		return false, err
	}
	isNull, err := r.delegate.IsNull(columnIndex)
	if err != nil {
		return false, &DatabaseError{Op: "IsNull", Cause: err}
	}
	return isNull, nil
}

// GetString retrieves the value of the designated column in the
// current row as a string. SQL NULL yields "" (see IsNull). The
// returned string is an owned copy and remains valid after the cursor
// advances.
func (r *ResultSet) GetString(columnIndex int) (string, error) {
	raw, err := r.value("GetString", columnIndex)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// GetStringByName retrieves the value of the named column in the
// current row as a string. SQL NULL yields "".
func (r *ResultSet) GetStringByName(columnName string) (string, error) {
	i, err := r.findColumn("GetStringByName", columnName)
	if err != nil {
		return "", err
	}
	return r.GetString(i)
}

// GetInt retrieves the value of the designated column in the current
// row as an int. SQL NULL yields 0. A value that is not a valid
// integer literal, or does not fit in an int, is a ConversionError.
func (r *ResultSet) GetInt(columnIndex int) (int, error) {
	v, err := r.parseInt("GetInt", columnIndex, strconv.IntSize)
	return int(v), err
}

// GetIntByName retrieves the value of the named column in the current
// row as an int. SQL NULL yields 0.
func (r *ResultSet) GetIntByName(columnName string) (int, error) {
	i, err := r.findColumn("GetIntByName", columnName)
	if err != nil {
		return 0, err
	}
	return r.GetInt(i)
}

// GetInt64 retrieves the value of the designated column in the current
// row as an int64. SQL NULL yields 0.
func (r *ResultSet) GetInt64(columnIndex int) (int64, error) {
	return r.parseInt("GetInt64", columnIndex, 64)
}

// GetInt64ByName retrieves the value of the named column in the
// current row as an int64. SQL NULL yields 0.
func (r *ResultSet) GetInt64ByName(columnName string) (int64, error) {
	i, err := r.findColumn("GetInt64ByName", columnName)
	if err != nil {
		return 0, err
	}
	return r.GetInt64(i)
}

// GetFloat64 retrieves the value of the designated column in the
// current row as a float64. SQL NULL yields 0.0.
func (r *ResultSet) GetFloat64(columnIndex int) (float64, error) {
	raw, err := r.value("GetFloat64", columnIndex)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	s := strings.TrimSpace(string(raw))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ConversionError{Op: "GetFloat64", Value: s, Target: "float64", Cause: err}
	}
	return v, nil
}

// GetFloat64ByName retrieves the value of the named column in the
// current row as a float64. SQL NULL yields 0.0.
func (r *ResultSet) GetFloat64ByName(columnName string) (float64, error) {
	i, err := r.findColumn("GetFloat64ByName", columnName)
	if err != nil {
		return 0, err
	}
	return r.GetFloat64(i)
}

// GetBlob retrieves the value of the designated column in the current
// row as raw bytes without conversion. SQL NULL yields nil. The
// returned slice borrows the current row's buffer and is valid only
// until the next call to Next or Close; copy it to retain the value.
func (r *ResultSet) GetBlob(columnIndex int) ([]byte, error) {
	return r.value("GetBlob", columnIndex)
}

// GetBlobByName retrieves the value of the named column in the current
// row as raw bytes. SQL NULL yields nil. The same buffer lifetime rule
// as GetBlob applies.
func (r *ResultSet) GetBlobByName(columnName string) ([]byte, error) {
	i, err := r.findColumn("GetBlobByName", columnName)
	if err != nil {
		return nil, err
	}
	return r.GetBlob(i)
}

// GetTimestamp retrieves the value of the designated column as a point
// in time. The column text may be a Timestamp or DateTime value; a
// timezone part, when present, is respected, otherwise the text is
// assumed to be local time. SQL NULL yields the Unix epoch.
func (r *ResultSet) GetTimestamp(columnIndex int) (time.Time, error) {
	raw, err := r.value("GetTimestamp", columnIndex)
	if err != nil {
		return time.Time{}, err
	}
	if raw == nil {
		return time.Unix(0, 0), nil
	}
	t, err := dbtime.ToTimestamp(string(raw))
	if err != nil {
		return time.Time{}, &ConversionError{Op: "GetTimestamp", Value: string(raw), Target: "timestamp", Cause: err}
	}
	return t, nil
}

// GetTimestampByName retrieves the value of the named column as a
// point in time. SQL NULL yields the Unix epoch.
func (r *ResultSet) GetTimestampByName(columnName string) (time.Time, error) {
	i, err := r.findColumn("GetTimestampByName", columnName)
	if err != nil {
		return time.Time{}, err
	}
	return r.GetTimestamp(i)
}

// GetDate retrieves the value of the designated column as a calendar
// date in the local timezone. The column may hold a Date, DateTime or
// Timestamp value. SQL NULL yields the zero Date.
func (r *ResultSet) GetDate(columnIndex int) (dbtime.Date, error) {
	raw, err := r.value("GetDate", columnIndex)
	if err != nil || raw == nil {
		return dbtime.Date{}, err
	}
	d, err := dbtime.ToDate(string(raw))
	if err != nil {
		return dbtime.Date{}, &ConversionError{Op: "GetDate", Value: string(raw), Target: "date", Cause: err}
	}
	return d, nil
}

// GetDateByName retrieves the value of the named column as a calendar
// date. SQL NULL yields the zero Date.
func (r *ResultSet) GetDateByName(columnName string) (dbtime.Date, error) {
	i, err := r.findColumn("GetDateByName", columnName)
	if err != nil {
		return dbtime.Date{}, err
	}
	return r.GetDate(i)
}

// GetTime retrieves the value of the designated column as a time of
// day in the local timezone. The column may hold a Time, DateTime or
// Timestamp value. SQL NULL yields the zero Time.
func (r *ResultSet) GetTime(columnIndex int) (dbtime.Time, error) {
	raw, err := r.value("GetTime", columnIndex)
	if err != nil || raw == nil {
		return dbtime.Time{}, err
	}
	t, err := dbtime.ToTime(string(raw))
	if err != nil {
		return dbtime.Time{}, &ConversionError{Op: "GetTime", Value: string(raw), Target: "time", Cause: err}
	}
	return t, nil
}

// GetTimeByName retrieves the value of the named column as a time of
// day. SQL NULL yields the zero Time.
func (r *ResultSet) GetTimeByName(columnName string) (dbtime.Time, error) {
	i, err := r.findColumn("GetTimeByName", columnName)
	if err != nil {
		return dbtime.Time{}, err
	}
	return r.GetTime(i)
}

// GetDateTime retrieves the value of the designated column as a
// combined date and time of day in the local timezone. The column may
// hold a Date, Time, DateTime or Timestamp value. SQL NULL yields the
// zero DateTime.
func (r *ResultSet) GetDateTime(columnIndex int) (dbtime.DateTime, error) {
	raw, err := r.value("GetDateTime", columnIndex)
	if err != nil || raw == nil {
		return dbtime.DateTime{}, err
	}
	dt, err := dbtime.ToDateTime(string(raw))
	if err != nil {
		return dbtime.DateTime{}, &ConversionError{Op: "GetDateTime", Value: string(raw), Target: "datetime", Cause: err}
	}
	return dt, nil
}

// GetDateTimeByName retrieves the value of the named column as a
// combined date and time of day. SQL NULL yields the zero DateTime.
func (r *ResultSet) GetDateTimeByName(columnName string) (dbtime.DateTime, error) {
	i, err := r.findColumn("GetDateTimeByName", columnName)
	if err != nil {
		return dbtime.DateTime{}, err
	}
	return r.GetDateTime(i)
}

// check validates lifecycle state and the 1-based column index.
func (r *ResultSet) check(op string, columnIndex int) error {
	if r.closed {
		return ErrResultSetClosed
	}
	if columnIndex < 1 || columnIndex > r.columnCount {
		return &OutOfRangeError{Op: op, What: "column", Index: columnIndex, Count: r.columnCount}
	}
	return nil
}

// value returns the raw bytes of the column, nil for SQL NULL.
func (r *ResultSet) value(op string, columnIndex int) ([]byte, error) {
	if err := r.check(op, columnIndex); err != nil {
		return nil, err
	}
	raw, err := r.delegate.Value(columnIndex)
	if err != nil {
		return nil, &DatabaseError{Op: op, Cause: err}
	}
	return raw, nil
}

// findColumn resolves a case-sensitive column name to the first
// matching 1-based index.
func (r *ResultSet) findColumn(op, columnName string) (int, error) {
	if r.closed {
		return 0, ErrResultSetClosed
	}
	for i := 1; i <= r.columnCount; i++ {
		if name, ok := r.delegate.ColumnName(i); ok && name == columnName {
			return i, nil
		}
	}
	return 0, &ColumnNotFoundError{Op: op, Name: columnName}
}

func (r *ResultSet) parseInt(op string, columnIndex, bitSize int) (int64, error) {
	raw, err := r.value(op, columnIndex)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	s := strings.TrimSpace(string(raw))
	v, err := strconv.ParseInt(s, 10, bitSize)
	if err != nil {
		target := "int64"
		if bitSize == strconv.IntSize {
			target = "int"
		}
		return 0, &ConversionError{Op: op, Value: s, Target: target, Cause: err}
	}
	return v, nil
}
