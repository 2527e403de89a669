package stdsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sqlbridge/sqlbridge/db"
)

// Options configures a database/sql-backed connection delegate.
type Options struct {
	// MaxRows > 0 caps the number of rows any query on this connection
	// yields.
	MaxRows int

	// Retry bounds the busy-retry loop; the zero value disables
	// retrying.
	Retry RetryPolicy
}

// Connection implements db.ConnectionDelegate over a dedicated
// *sql.Conn, so that statements, direct SQL and transaction verbs all
// run on the same backend session. The *sql.DB it was drawn from is
// owned by the adapter that opened it and closed together with the
// connection.
type Connection struct {
	sqldb   *sql.DB
	conn    *sql.Conn
	dialect Dialect
	opts    Options
}

// NewConnection reserves one session from sqldb and wraps it as a
// connection delegate. Ownership of sqldb transfers to the returned
// connection.
func NewConnection(ctx context.Context, sqldb *sql.DB, dialect Dialect, opts Options) (*Connection, error) {
	conn, err := sqldb.Conn(ctx)
	if err != nil {
		sqldb.Close()
		return nil, dialect.TranslateError("Connect", err)
	}
	return &Connection{sqldb: sqldb, conn: conn, dialect: dialect, opts: opts}, nil
}

// Prepare compiles the SQL text on this session.
func (c *Connection) Prepare(ctx context.Context, query string) (db.StatementDelegate, error) {
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, c.dialect.TranslateError("Prepare", err)
	}
	return NewStatement(stmt, query, c.dialect, c.opts.MaxRows, c.opts.Retry), nil
}

// Execute runs the SQL text directly, without parameters.
func (c *Connection) Execute(ctx context.Context, query string) error {
	return withRetry(ctx, c.dialect, c.opts.Retry, "Execute", func() error {
		_, err := c.conn.ExecContext(ctx, query)
		return err
	})
}

// ExecuteQuery runs the SQL text directly and returns a row cursor.
func (c *Connection) ExecuteQuery(ctx context.Context, query string) (db.ResultDelegate, error) {
	var rows *sql.Rows
	err := withRetry(ctx, c.dialect, c.opts.Retry, "ExecuteQuery", func() error {
		var err error
		rows, err = c.conn.QueryContext(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewRows(rows, c.dialect, c.opts.MaxRows)
}

// Begin starts a transaction. The verb is issued as plain SQL so it
// stays on this session; the core owns no transaction coordination.
func (c *Connection) Begin(ctx context.Context) error {
	return c.Execute(ctx, "BEGIN")
}

// Commit commits the current transaction.
func (c *Connection) Commit(ctx context.Context) error {
	return c.Execute(ctx, "COMMIT")
}

// Rollback rolls back the current transaction.
func (c *Connection) Rollback(ctx context.Context) error {
	return c.Execute(ctx, "ROLLBACK")
}

// Ping verifies the session is alive.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.conn.PingContext(ctx); err != nil {
		return c.dialect.TranslateError("Ping", err)
	}
	return nil
}

// Close releases the session and the database handle it was drawn
// from.
func (c *Connection) Close() error {
	return errors.Join(c.conn.Close(), c.sqldb.Close())
}
