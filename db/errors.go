// Package db implements the backend-independent core of sqlbridge:
// prepared statements, forward-only result sets with on-read type
// coercion, and the delegate contracts every backend adapter must
// satisfy. The core dispatches purely through those contracts and
// carries zero backend-specific logic.
package db

import (
	"errors"
	"fmt"
)

// Sentinel errors for lifecycle and contract violations.
var (
	// ErrResultSetClosed is returned by every ResultSet method after the
	// set has been closed, either explicitly or because its owning
	// statement executed again.
	ErrResultSetClosed = errors.New("sqlbridge: result set is closed")

	// ErrStatementClosed is returned by every PreparedStatement method
	// after Close.
	ErrStatementClosed = errors.New("sqlbridge: statement is closed")

	// ErrConnectionClosed is returned by every Connection method after
	// Close.
	ErrConnectionClosed = errors.New("sqlbridge: connection is closed")

	// ErrNoResultHandle indicates that a backend delegate returned no
	// result cursor from ExecuteQuery. This is a delegate contract
	// violation, distinct from a valid result set with zero rows.
	ErrNoResultHandle = errors.New("sqlbridge: query produced no result handle")
)

// Backend condition sentinels. Adapters map native error codes onto
// these so callers can test conditions uniformly with errors.Is,
// regardless of which engine sits behind the connection.
var (
	// ErrUniqueConstraint indicates a unique constraint violation.
	ErrUniqueConstraint = errors.New("sqlbridge: unique constraint violation")

	// ErrForeignKeyConstraint indicates a foreign key constraint violation.
	ErrForeignKeyConstraint = errors.New("sqlbridge: foreign key constraint violation")

	// ErrNullConstraint indicates a not-null constraint violation.
	ErrNullConstraint = errors.New("sqlbridge: null constraint violation")

	// ErrBusy indicates the engine could not acquire a required lock.
	// Adapters retry busy conditions internally; ErrBusy surfaces only
	// when the retry budget is exhausted.
	ErrBusy = errors.New("sqlbridge: database is busy")
)

// OutOfRangeError is returned when a column or parameter index lies
// outside [1, Count].
type OutOfRangeError struct {
	// Op is the operation that detected the violation.
	Op string

	// What names the indexed entity, "column" or "parameter".
	What string

	// Index is the offending 1-based index.
	Index int

	// Count is the number of valid positions.
	Count int
}

// Error implements the error interface.
func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("sqlbridge: %s: %s index %d out of range [1, %d]", e.Op, e.What, e.Index, e.Count)
}

// ColumnNotFoundError is returned when a by-name lookup finds no column
// with the requested name. Column names are case-sensitive.
type ColumnNotFoundError struct {
	Op   string
	Name string
}

// Error implements the error interface.
func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("sqlbridge: %s: column %q not found", e.Op, e.Name)
}

// ConversionError is returned when a raw column value or an input
// string cannot be converted to the requested type.
type ConversionError struct {
	// Op is the operation that attempted the conversion.
	Op string

	// Value is the textual representation that failed to convert.
	Value string

	// Target is the requested type, e.g. "int64" or "timestamp".
	Target string

	// Cause is the underlying parse error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sqlbridge: %s: cannot convert %q to %s: %v", e.Op, e.Value, e.Target, e.Cause)
	}
	return fmt.Sprintf("sqlbridge: %s: cannot convert %q to %s", e.Op, e.Value, e.Target)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// DatabaseError is returned when the native backend reports a failure
// independent of data shape, e.g. a lost connection or a constraint
// violation surfaced by the engine.
type DatabaseError struct {
	// Op is the operation during which the backend failed.
	Op string

	// Cause is the translated or native backend error.
	Cause error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	return fmt.Sprintf("sqlbridge: %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// Is reports whether the underlying cause matches target.
func (e *DatabaseError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// ExecutionError is returned when a backend delegate violates its
// contract, e.g. ExecuteQuery yielding no cursor handle.
type ExecutionError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("sqlbridge: %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the underlying cause matches target.
func (e *ExecutionError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// IsOutOfRange checks if an error is an index range violation.
func IsOutOfRange(err error) bool {
	var e *OutOfRangeError
	return errors.As(err, &e)
}

// IsColumnNotFound checks if an error is a by-name lookup miss.
func IsColumnNotFound(err error) bool {
	var e *ColumnNotFoundError
	return errors.As(err, &e)
}

// IsConversionError checks if an error is a type conversion failure.
func IsConversionError(err error) bool {
	var e *ConversionError
	return errors.As(err, &e)
}

// IsDatabaseError checks if an error is a native backend failure.
func IsDatabaseError(err error) bool {
	var e *DatabaseError
	return errors.As(err, &e)
}
