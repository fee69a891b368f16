package sqlfn

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Conn is a single database connection with an identity that keys
// prepared statements. A Conn is not safe for concurrent use.
type Conn struct {
	id      uuid.UUID
	backend string
	conn    *sql.Conn
	cache   *StmtCache
	closed  bool
}

// Open takes one connection out of db's pool. Statements prepared through
// the Conn are kept in cache; a nil cache gets a private one.
func Open(ctx context.Context, db *sql.DB, backend string, cache *StmtCache) (*Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", backend, err)
	}
	if cache == nil {
		cache = NewStmtCache()
	}
	return &Conn{
		id:      uuid.New(),
		backend: backend,
		conn:    conn,
		cache:   cache,
	}, nil
}

// ID returns the connection identity.
func (c *Conn) ID() uuid.UUID { return c.id }

// Backend returns the backend tag the connection was opened for.
func (c *Conn) Backend() string { return c.backend }

// Raw returns the underlying connection.
func (c *Conn) Raw() *sql.Conn { return c.conn }

// ExecContext implements DBTX.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.closed {
		return nil, ErrConnClosed
	}
	return c.conn.ExecContext(ctx, query, args...)
}

// QueryContext implements DBTX.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c.closed {
		return nil, ErrConnClosed
	}
	return c.conn.QueryContext(ctx, query, args...)
}

// Prepare returns the cached statement for q on this connection, preparing
// it on first use.
func (c *Conn) Prepare(ctx context.Context, q Query) (*Stmt, error) {
	if c.closed {
		return nil, WrapError(q, OpPrepare, ErrConnClosed)
	}
	return c.cache.prepare(ctx, c, q)
}

// Close closes every statement prepared on the connection, drops them from
// the cache and returns the connection to its pool.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	stmtErr := c.cache.Invalidate(c.id)
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("close %s connection: %w", c.backend, err)
	}
	return stmtErr
}

// Stmt is a statement prepared on one Conn. It implements DBTX for the SQL
// it was prepared from, so generated wrappers run against it unchanged.
type Stmt struct {
	query Query
	conn  uuid.UUID
	stmt  *sql.Stmt
}

// Query returns the statement the handle was prepared for.
func (s *Stmt) Query() Query { return s.query }

// ExecContext implements DBTX.
func (s *Stmt) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := s.check(query); err != nil {
		return nil, err
	}
	return s.stmt.ExecContext(ctx, args...)
}

// QueryContext implements DBTX.
func (s *Stmt) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := s.check(query); err != nil {
		return nil, err
	}
	return s.stmt.QueryContext(ctx, args...)
}

func (s *Stmt) check(query string) error {
	if query != s.query.SQL {
		return fmt.Errorf("%w: prepared for %s", ErrStmtMismatch, s.query.Name)
	}
	return nil
}
