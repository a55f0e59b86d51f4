package store

import (
	"context"
	"sync"
)

// Cached wraps a Store and keeps the last Tables read in memory until
// Invalidate is called. File watchers call Invalidate when the backing
// files change; without a watcher the snapshot lives for the process
// lifetime, so only wrap stores whose changes you can observe.
type Cached struct {
	inner Store

	mu     sync.RWMutex
	tables *Tables
}

// NewCached wraps inner with an invalidating memory snapshot.
func NewCached(inner Store) *Cached {
	return &Cached{inner: inner}
}

// Tables returns the memoized snapshot, reading through to the inner
// store on the first call after construction or invalidation.
func (c *Cached) Tables(ctx context.Context) (*Tables, error) {
	c.mu.RLock()
	t := c.tables
	c.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tables != nil {
		return c.tables, nil
	}

	t, err := c.inner.Tables(ctx)
	if err != nil {
		return nil, err
	}
	c.tables = t
	return t, nil
}

// Replace writes through to the inner store and drops the snapshot, so
// the next read observes what the store actually persisted.
func (c *Cached) Replace(ctx context.Context, t *Tables) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.inner.Replace(ctx, t); err != nil {
		return err
	}
	c.tables = nil
	return nil
}

// Invalidate drops the snapshot. The next Tables call re-reads the
// inner store.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.tables = nil
	c.mu.Unlock()
}

// Close closes the inner store.
func (c *Cached) Close() error {
	return c.inner.Close()
}

var _ Store = (*Cached)(nil)
