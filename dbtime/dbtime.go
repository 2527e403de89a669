// Package dbtime parses SQL temporal text — timestamp, date, time and
// datetime values — into structured values, timezone-aware.
//
// Accepted input is ISO-like: `YYYY-MM-DD[ HH:MM:SS[.ffffff]][±HH:MM]`
// with either a space or a 'T' separator, plus the date-only and
// time-only subsets. If the text carries a timezone offset it is
// honored and the result converted to local time; if it does not, the
// text is assumed to already be local time. Out-of-range components
// (month 13, hour 25) are rejected, never clamped.
//
// Unlike the ResultSet temporal getters, which map SQL NULL to a
// zero-valued structure, the entry points in this package treat empty
// input as an error: they parse arbitrary external text, where absence
// of a value is a caller bug rather than a row state.
package dbtime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid is wrapped by every parse failure reported by this
// package.
var ErrInvalid = errors.New("dbtime: invalid temporal value")

// Now returns the current local time.
func Now() time.Time {
	return time.Now()
}

// Milli returns the time since the Unix epoch in milliseconds.
func Milli() int64 {
	return time.Now().UnixMilli()
}

// Date is a calendar date. The zero Date marks a SQL NULL read through
// a ResultSet getter.
type Date struct {
	Year  int
	Month int
	Day   int
}

// IsZero reports whether the date has no value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time is a time of day with microsecond resolution. The zero Time
// marks a SQL NULL read through a ResultSet getter.
type Time struct {
	Hour int
	Min  int
	Sec  int
	USec int
}

// IsZero reports whether the time has no value.
func (t Time) IsZero() bool {
	return t == Time{}
}

// String renders the time as HH:MM:SS, with a fractional part when
// microseconds are present.
func (t Time) String() string {
	if t.USec > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour, t.Min, t.Sec, t.USec)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Min, t.Sec)
}

// DateTime is a combined calendar date and time of day. Either part
// may be zero when the source text carried only the other.
type DateTime struct {
	Date Date
	Time Time
}

// IsZero reports whether the datetime has no value.
func (dt DateTime) IsZero() bool {
	return dt == DateTime{}
}

// String renders the datetime as "YYYY-MM-DD HH:MM:SS[.ffffff]".
func (dt DateTime) String() string {
	return dt.Date.String() + " " + dt.Time.String()
}

// Layouts are ordered most to least specific: zoned before unzoned,
// fraction layouts subsume their fraction-less forms via ".999999".
var layouts = []struct {
	layout  string
	hasDate bool
	hasTime bool
	hasZone bool
}{
	{"2006-01-02 15:04:05.999999Z07:00", true, true, true},
	{"2006-01-02T15:04:05.999999Z07:00", true, true, true},
	{"2006-01-02 15:04:05.999999", true, true, false},
	{"2006-01-02T15:04:05.999999", true, true, false},
	{"2006-01-02", true, false, false},
	{"15:04:05.999999Z07:00", false, true, true},
	{"15:04:05.999999", false, true, false},
}

// parse matches s against the accepted layouts and reports which parts
// were present. A zoned result is converted to local time.
func parse(s string) (t time.Time, hasDate, hasTime bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false, fmt.Errorf("%w: empty input", ErrInvalid)
	}
	for _, l := range layouts {
		var parsed time.Time
		if l.hasZone {
			parsed, err = time.Parse(l.layout, s)
		} else {
			parsed, err = time.ParseInLocation(l.layout, s, time.Local)
		}
		if err == nil {
			if l.hasZone {
				parsed = parsed.Local()
			}
			return parsed, l.hasDate, l.hasTime, nil
		}
		// A range violation means the shape matched but a component was
		// invalid; report it instead of trying laxer layouts.
		if strings.Contains(err.Error(), "out of range") {
			return time.Time{}, false, false, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
		}
	}
	return time.Time{}, false, false, fmt.Errorf("%w: %q", ErrInvalid, s)
}

// ToTimestamp parses s into a point in time. The input must carry at
// least a date; a missing time of day means midnight. A timezone
// offset, when present, is respected; otherwise s is assumed to be
// local time.
func ToTimestamp(s string) (time.Time, error) {
	t, hasDate, _, err := parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if !hasDate {
		return time.Time{}, fmt.Errorf("%w: %q: timestamp requires a date part", ErrInvalid, s)
	}
	return t, nil
}

// ToDate parses s into a calendar date in the local timezone. The
// input may be a Date, DateTime or Timestamp value.
func ToDate(s string) (Date, error) {
	t, hasDate, _, err := parse(s)
	if err != nil {
		return Date{}, err
	}
	if !hasDate {
		return Date{}, fmt.Errorf("%w: %q: no date part", ErrInvalid, s)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// ToTime parses s into a time of day in the local timezone. The input
// may be a Time, DateTime or Timestamp value.
func ToTime(s string) (Time, error) {
	t, _, hasTime, err := parse(s)
	if err != nil {
		return Time{}, err
	}
	if !hasTime {
		return Time{}, fmt.Errorf("%w: %q: no time part", ErrInvalid, s)
	}
	return Time{Hour: t.Hour(), Min: t.Minute(), Sec: t.Second(), USec: t.Nanosecond() / 1000}, nil
}

// ToDateTime parses s into a combined date and time of day in the
// local timezone. A part missing from the input is left zero.
func ToDateTime(s string) (DateTime, error) {
	t, hasDate, hasTime, err := parse(s)
	if err != nil {
		return DateTime{}, err
	}
	var dt DateTime
	if hasDate {
		dt.Date = Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
	}
	if hasTime {
		dt.Time = Time{Hour: t.Hour(), Min: t.Minute(), Sec: t.Second(), USec: t.Nanosecond() / 1000}
	}
	return dt, nil
}
