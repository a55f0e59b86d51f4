package store

import (
	"context"
	"sync"
)

// =============================================================================
// In-Memory Store
// =============================================================================

// Memory is a Store backed by process memory. It is the default backend
// for tests and for serving a freshly generated dataset without touching
// disk.
type Memory struct {
	mu     sync.RWMutex
	tables Tables
}

// NewMemory creates an empty in-memory store. Pass seed to start with
// data; nil starts empty.
func NewMemory(seed *Tables) *Memory {
	m := &Memory{}
	if seed != nil {
		m.tables = copyTables(seed)
	}
	return m
}

// Tables returns a copy of the dataset. Callers may mutate the result
// freely.
func (m *Memory) Tables(ctx context.Context) (*Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t := copyTables(&m.tables)
	return &t, nil
}

// Replace swaps the dataset.
func (m *Memory) Replace(ctx context.Context, t *Tables) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = copyTables(t)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)

// copyTables deep-copies the row slices so the store and its callers
// never alias each other's memory.
func copyTables(t *Tables) Tables {
	out := Tables{}
	if t.Nodes != nil {
		out.Nodes = append(out.Nodes, t.Nodes...)
		for i := range out.Nodes {
			if meta := out.Nodes[i].Meta; meta != nil {
				cp := make(map[string]string, len(meta))
				for k, v := range meta {
					cp[k] = v
				}
				out.Nodes[i].Meta = cp
			}
		}
	}
	if t.Edges != nil {
		out.Edges = append(out.Edges, t.Edges...)
	}
	if t.Summaries != nil {
		out.Summaries = append(out.Summaries, t.Summaries...)
	}
	return out
}
