package db

import "context"

// Connection represents one exclusive backend session, created by a
// backend adapter's Open (or checked out of a pool, which owns all
// cross-goroutine sharing). It hands out prepared statements, runs SQL
// directly, and passes transaction verbs through to the backend.
//
// The connection tracks every statement it prepares so that Close can
// release them, and transitively their result sets, before the backend
// session goes away.
//
// A Connection is reentrant, but not thread-safe, and should only be
// used by one goroutine at a time.
type Connection struct {
	delegate   ConnectionDelegate
	statements []*PreparedStatement
	closed     bool
}

// NewConnection wraps a backend connection delegate. It is called by
// backend adapters; applications obtain connections through an
// adapter's Open or a pool.
func NewConnection(delegate ConnectionDelegate) *Connection {
	return &Connection{delegate: delegate}
}

// Close releases every statement prepared on this connection, then the
// backend session. Closing an already-closed connection is a no-op.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	for _, stmt := range c.statements {
		stmt.Close()
	}
	c.statements = nil
	return c.delegate.Close()
}

// Prepare compiles the SQL text into a PreparedStatement with
// positional parameter slots. The statement stays valid until it or
// the connection is closed.
func (c *Connection) Prepare(ctx context.Context, query string) (*PreparedStatement, error) {
	if c.closed {
		return nil, ErrConnectionClosed
	}
	delegate, err := c.delegate.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	stmt := NewPreparedStatement(delegate)
	c.statements = append(c.statements, stmt)
	return stmt, nil
}

// Execute runs the SQL text directly, without parameters or rows.
func (c *Connection) Execute(ctx context.Context, query string) error {
	if c.closed {
		return ErrConnectionClosed
	}
	return c.delegate.Execute(ctx, query)
}

// ExecuteQuery runs the SQL text directly and returns a ResultSet over
// the produced rows. The caller owns the returned set and closes it
// when done.
func (c *Connection) ExecuteQuery(ctx context.Context, query string) (*ResultSet, error) {
	if c.closed {
		return nil, ErrConnectionClosed
	}
	delegate, err := c.delegate.ExecuteQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if delegate == nil {
		return nil, &ExecutionError{Op: "ExecuteQuery", Cause: ErrNoResultHandle}
	}
	return NewResultSet(delegate), nil
}

// Begin starts a transaction on the backend session.
func (c *Connection) Begin(ctx context.Context) error {
	if c.closed {
		return ErrConnectionClosed
	}
	return c.delegate.Begin(ctx)
}

// Commit commits the current transaction.
func (c *Connection) Commit(ctx context.Context) error {
	if c.closed {
		return ErrConnectionClosed
	}
	return c.delegate.Commit(ctx)
}

// Rollback rolls back the current transaction.
func (c *Connection) Rollback(ctx context.Context) error {
	if c.closed {
		return ErrConnectionClosed
	}
	return c.delegate.Rollback(ctx)
}

// Ping verifies the backend session is alive.
func (c *Connection) Ping(ctx context.Context) error {
	if c.closed {
		return ErrConnectionClosed
	}
	return c.delegate.Ping(ctx)
}
