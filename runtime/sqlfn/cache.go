package sqlfn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// CacheStats represents statement cache statistics.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Size    int
	HitRate float64
}

type cacheKey struct {
	query string
	conn  uuid.UUID
}

// StmtCache holds prepared statements keyed by (query name, connection).
// Several connections may share one cache; entries of a connection are
// removed when it closes.
type StmtCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*Stmt
	stats   CacheStats
}

// NewStmtCache creates an empty cache.
func NewStmtCache() *StmtCache {
	return &StmtCache{entries: make(map[cacheKey]*Stmt)}
}

func (c *StmtCache) prepare(ctx context.Context, conn *Conn, q Query) (*Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{query: q.Name, conn: conn.id}
	if s, ok := c.entries[key]; ok {
		if s.query.SQL != q.SQL {
			return nil, WrapError(q, OpPrepare, fmt.Errorf("%w: %s is cached with different SQL", ErrStmtMismatch, q.Name))
		}
		c.stats.Hits++
		c.updateHitRate()
		return s, nil
	}

	stmt, err := conn.conn.PrepareContext(ctx, q.SQL)
	if err != nil {
		c.stats.Misses++
		c.updateHitRate()
		return nil, WrapError(q, OpPrepare, err)
	}
	s := &Stmt{query: q, conn: conn.id, stmt: stmt}
	c.entries[key] = s
	c.stats.Misses++
	c.stats.Size = len(c.entries)
	c.updateHitRate()
	return s, nil
}

// Lookup returns the statement cached for a query name on a connection.
func (c *StmtCache) Lookup(name string, conn uuid.UUID) (*Stmt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[cacheKey{query: name, conn: conn}]
	return s, ok
}

// Invalidate closes and removes every statement of a connection.
func (c *StmtCache) Invalidate(conn uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for key, s := range c.entries {
		if key.conn != conn {
			continue
		}
		if err := s.stmt.Close(); err != nil {
			errs = append(errs, WrapError(s.query, OpClose, err))
		}
		delete(c.entries, key)
	}
	c.stats.Size = len(c.entries)
	return errors.Join(errs...)
}

// Len returns the number of cached statements.
func (c *StmtCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *StmtCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *StmtCache) updateHitRate() {
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		c.stats.HitRate = float64(c.stats.Hits) / float64(total)
	}
}
