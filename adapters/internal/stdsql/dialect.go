// Package stdsql implements the sqlbridge delegate contracts on top of
// database/sql. Every bundled backend (SQLite, MySQL, Postgres,
// DuckDB) ships a database/sql driver, so the adapters share this one
// implementation and differ only in their Dialect: placeholder syntax,
// native error translation and retry classification.
package stdsql

import (
	"context"
	"strings"
	"time"

	"github.com/sqlbridge/sqlbridge/internal/debug"
)

// Dialect captures what differs between database/sql backends.
type Dialect interface {
	// Name returns the backend name, e.g. "sqlite".
	Name() string

	// ParameterCount returns the number of bindable positions in the
	// SQL text, per the backend's placeholder syntax.
	ParameterCount(query string) int

	// TranslateError maps a native driver error into the sqlbridge
	// error taxonomy. op names the failing operation.
	TranslateError(op string, err error) error

	// Retryable reports whether the native error is a transient lock
	// condition worth retrying, e.g. SQLite's busy/locked codes.
	Retryable(err error) bool
}

// RetryPolicy bounds the internal busy-retry loop around execute and
// query calls. The loop is invisible to callers beyond the context
// deadline they supplied.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Backoff is the initial sleep between tries; it doubles every
	// attempt.
	Backoff time.Duration
}

// DefaultRetryPolicy suits embedded engines with short-lived write
// locks.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 10, Backoff: 5 * time.Millisecond}
}

// withRetry runs f, retrying transient lock errors per the policy. The
// final error, transient or not, is translated by the dialect.
func withRetry(ctx context.Context, d Dialect, p RetryPolicy, op string, f func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = f()
		if err == nil || !d.Retryable(err) {
			break
		}
		if attempt == attempts {
			break
		}
		debug.Debug("retrying busy operation",
			"backend", d.Name(), "op", op, "attempt", attempt, "backoff", backoff)
		select {
		case <-ctx.Done():
			return d.TranslateError(op, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if err != nil {
		return d.TranslateError(op, err)
	}
	return nil
}

// CountQuestionMarks counts `?` placeholders in the SQL text, skipping
// string literals, quoted identifiers and comments. Used by the
// backends with ordinal `?` syntax.
func CountQuestionMarks(query string) int {
	n := 0
	for i := 0; i < len(query); i++ {
		switch c := query[i]; c {
		case '\'', '"', '`':
			i = skipQuoted(query, i, c)
		case '-':
			if i+1 < len(query) && query[i+1] == '-' {
				i = skipLineComment(query, i)
			}
		case '/':
			if i+1 < len(query) && query[i+1] == '*' {
				i = skipBlockComment(query, i)
			}
		case '?':
			n++
		}
	}
	return n
}

// CountDollarPlaceholders returns the highest `$n` ordinal in the SQL
// text, skipping string literals, quoted identifiers and comments.
// Used by the Postgres backend.
func CountDollarPlaceholders(query string) int {
	max := 0
	for i := 0; i < len(query); i++ {
		switch c := query[i]; c {
		case '\'', '"':
			i = skipQuoted(query, i, c)
		case '-':
			if i+1 < len(query) && query[i+1] == '-' {
				i = skipLineComment(query, i)
			}
		case '/':
			if i+1 < len(query) && query[i+1] == '*' {
				i = skipBlockComment(query, i)
			}
		case '$':
			n := 0
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				n = n*10 + int(query[j]-'0')
				j++
			}
			if j > i+1 && n > max {
				max = n
			}
			i = j - 1
		}
	}
	return max
}

// skipQuoted returns the index of the closing quote, honoring doubled
// quotes as escapes.
func skipQuoted(query string, start int, quote byte) int {
	for i := start + 1; i < len(query); i++ {
		if query[i] == quote {
			if i+1 < len(query) && query[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return len(query) - 1
}

func skipLineComment(query string, start int) int {
	if end := strings.IndexByte(query[start:], '\n'); end >= 0 {
		return start + end
	}
	return len(query) - 1
}

func skipBlockComment(query string, start int) int {
	if end := strings.Index(query[start+2:], "*/"); end >= 0 {
		return start + 2 + end + 1
	}
	return len(query) - 1
}
