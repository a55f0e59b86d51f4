package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/impactgraph/impactgraph/pkg/cache"
	"github.com/impactgraph/impactgraph/pkg/gen"
	"github.com/impactgraph/impactgraph/pkg/store"
	"github.com/impactgraph/impactgraph/pkg/store/mongo"
	"github.com/impactgraph/impactgraph/pkg/store/sqlite"
)

// demoLocator selects an in-memory store seeded with generated tables.
const demoLocator = "demo"

// mongoDatabase is the database name used for mongodb:// locators.
const mongoDatabase = "impactgraph"

// openStore resolves a --data locator into a store backend:
//
//	demo (or empty)     in-memory store with generated demo tables
//	mongodb://host/...  MongoDB
//	path ending in .db, .sqlite, .sqlite3
//	                    SQLite file
//	any other path      CSV directory
func openStore(ctx context.Context, locator string) (store.Store, error) {
	switch {
	case locator == "" || locator == demoLocator:
		tables, err := gen.Generate(gen.Options{Seed: gen.DefaultSeed})
		if err != nil {
			return nil, fmt.Errorf("generate demo tables: %w", err)
		}
		return store.NewMemory(tables), nil

	case strings.HasPrefix(locator, "mongodb://"), strings.HasPrefix(locator, "mongodb+srv://"):
		return mongo.Open(ctx, locator, mongoDatabase)

	case isSQLitePath(locator):
		return sqlite.Open(locator)

	default:
		return store.NewCSV(locator), nil
	}
}

func isSQLitePath(locator string) bool {
	switch filepath.Ext(locator) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// csvDir returns the directory behind a locator when it names a CSV
// store, for wiring file watchers. Demo, SQLite, and Mongo locators
// have no watchable directory.
func csvDir(locator string) (string, bool) {
	if locator == "" || locator == demoLocator ||
		strings.HasPrefix(locator, "mongodb://") || strings.HasPrefix(locator, "mongodb+srv://") ||
		isSQLitePath(locator) {
		return "", false
	}
	return locator, true
}

// =============================================================================
// Cache
// =============================================================================

// newCache returns the artifact cache for CLI use: a file cache under the
// user cache directory, or a null cache when disabled or the directory
// cannot be resolved.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/impactgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
