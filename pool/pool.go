// Package pool manages a set of database connections and hands them
// out for exclusive use. The core statement and result-set objects are
// reentrant but not thread-safe; the pool is the unit of cross-
// goroutine sharing — one goroutine checks a connection out, uses it
// and its statements alone, and returns it.
package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sqlbridge/sqlbridge/db"
	"github.com/sqlbridge/sqlbridge/dburl"
	"github.com/sqlbridge/sqlbridge/internal/debug"
)

// ErrClosed is returned by Get after the pool has been closed.
var ErrClosed = errors.New("pool: closed")

// Config holds pool sizing and reaping configuration.
type Config struct {
	// InitialConns connections are opened eagerly by New.
	InitialConns int

	// MaxConns caps the number of simultaneously open connections.
	MaxConns int

	// ConnectTimeout bounds each dial of a new connection.
	ConnectTimeout time.Duration

	// ReapInterval is how often idle connections are swept. Zero
	// disables the reaper.
	ReapInterval time.Duration

	// MaxIdleTime is how long a connection may sit idle before the
	// reaper closes it.
	MaxIdleTime time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		InitialConns:   5,
		MaxConns:       20,
		ConnectTimeout: 10 * time.Second,
		ReapInterval:   time.Minute,
		MaxIdleTime:    10 * time.Minute,
	}
}

// Stats is a point-in-time snapshot of pool state.
type Stats struct {
	// Active is the number of connections currently checked out.
	Active int

	// Idle is the number of open connections waiting in the pool.
	Idle int

	// MaxConns is the configured cap.
	MaxConns int

	// Opened and Reaped count connections dialed and swept over the
	// pool's lifetime.
	Opened int64
	Reaped int64
}

type idleConn struct {
	conn     *db.Connection
	lastUsed time.Time
}

// Pool hands out exclusive connections opened from one database URL.
type Pool struct {
	url    string
	config Config

	// slots is a semaphore: one token per permissible open connection.
	slots chan struct{}

	mu     sync.Mutex
	idle   []idleConn
	closed bool
	opened int64
	reaped int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a pool for the given database URL, opens the initial
// connections and starts the reaper. The URL scheme selects the
// backend adapter, which must have been imported.
func New(url string, config Config) (*Pool, error) {
	if config.MaxConns < 1 {
		config.MaxConns = 1
	}
	if config.InitialConns > config.MaxConns {
		config.InitialConns = config.MaxConns
	}
	p := &Pool{
		url:    url,
		config: config,
		slots:  make(chan struct{}, config.MaxConns),
	}
	for i := 0; i < config.MaxConns; i++ {
		p.slots <- struct{}{}
	}
	for i := 0; i < config.InitialConns; i++ {
		conn, err := p.dial(context.Background())
		if err != nil {
			p.Close()
			return nil, err
		}
		p.mu.Lock()
		p.idle = append(p.idle, idleConn{conn: conn, lastUsed: time.Now()})
		p.mu.Unlock()
	}
	if config.ReapInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.wg.Add(1)
		go p.reapLoop(ctx)
	}
	return p, nil
}

// Get checks a connection out for exclusive use by the calling
// goroutine. It blocks while the pool is at capacity until a
// connection is returned or ctx is done. A connection that fails its
// liveness check is discarded and replaced transparently.
func (p *Pool) Get(ctx context.Context) (*db.Connection, error) {
	select {
	case <-p.slots:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}
		var conn *db.Connection
		if n := len(p.idle); n > 0 {
			conn = p.idle[n-1].conn
			p.idle = p.idle[:n-1]
		}
		p.mu.Unlock()
		if conn == nil {
			conn, err := p.dial(ctx)
			if err != nil {
				p.release()
				return nil, err
			}
			return conn, nil
		}
		if err := conn.Ping(ctx); err != nil {
			debug.Warn("pool: dropping dead connection", "error", err)
			conn.Close()
			continue
		}
		return conn, nil
	}
}

// Put returns a connection obtained from Get. A closed pool closes the
// connection instead of keeping it, as does a Put without a matching
// Get: a connection is kept only when its capacity token can be
// returned, so the idle set never exceeds MaxConns.
func (p *Pool) Put(conn *db.Connection) {
	if conn == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		conn.Close()
		return
	}
	select {
	case p.slots <- struct{}{}:
	default:
		p.mu.Unlock()
		conn.Close()
		return
	}
	p.idle = append(p.idle, idleConn{conn: conn, lastUsed: time.Now()})
	p.mu.Unlock()
}

// Stats returns a snapshot of pool state.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Active:   p.config.MaxConns - len(p.slots),
		Idle:     len(p.idle),
		MaxConns: p.config.MaxConns,
		Opened:   p.opened,
		Reaped:   p.reaped,
	}
}

// Close stops the reaper and closes every idle connection. Checked-out
// connections are closed when returned.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	var err error
	for _, ic := range idle {
		err = errors.Join(err, ic.conn.Close())
	}
	return err
}

func (p *Pool) dial(ctx context.Context) (*db.Connection, error) {
	if p.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.ConnectTimeout)
		defer cancel()
	}
	conn, err := dburl.Open(ctx, p.url)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.opened++
	p.mu.Unlock()
	return conn, nil
}

// release returns the capacity token taken by Get when no connection
// came out of it.
func (p *Pool) release() {
	p.slots <- struct{}{}
}

func (p *Pool) reapLoop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.config.ReapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.reap()
		}
	}
}

// reap closes idle connections older than MaxIdleTime, always leaving
// the initial complement in place.
func (p *Pool) reap() {
	cutoff := time.Now().Add(-p.config.MaxIdleTime)
	var victims []*db.Connection
	p.mu.Lock()
	kept := p.idle[:0]
	for _, ic := range p.idle {
		if len(p.idle)-len(victims) > p.config.InitialConns && ic.lastUsed.Before(cutoff) {
			victims = append(victims, ic.conn)
			continue
		}
		kept = append(kept, ic)
	}
	p.idle = kept
	p.reaped += int64(len(victims))
	p.mu.Unlock()
	for _, c := range victims {
		c.Close()
	}
	if len(victims) > 0 {
		debug.Debug("pool: reaped idle connections", "count", len(victims))
	}
}
