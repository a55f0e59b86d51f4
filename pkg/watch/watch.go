// Package watch reacts to table files changing on disk.
//
// A Watcher observes a CSV store directory and emits one debounced Event per
// burst of writes to the table files (nodes.csv, edges.csv, summary.csv).
// Registered callbacks run on every flush; the serve command uses them to
// drop cached pipeline results so the next request recomputes from the new
// tables.
//
// Editors and bulk copies produce several filesystem events per logical
// change, so raw events are batched and flushed after a quiet period rather
// than forwarded one by one.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/impactgraph/impactgraph/pkg/store"
)

// debounce is the quiet period before a batch of raw events is flushed.
const debounce = 100 * time.Millisecond

// Event is a batch of table file changes.
type Event struct {
	// Paths are the changed files, in event order, deduplicated.
	Paths []string

	// Timestamp is when the batch was flushed.
	Timestamp time.Time
}

// Watcher watches one CSV store directory for table changes.
type Watcher struct {
	fsw    *fsnotify.Watcher
	dir    string
	files  []string
	events chan Event
	logger *log.Logger

	mu        sync.Mutex
	callbacks []func(Event)
	started   bool
}

// New creates a watcher over a CSV store directory.
// If logger is nil, the default logger is used.
func New(dir string, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		fsw:    fsw,
		dir:    dir,
		files:  store.TableFiles(),
		events: make(chan Event, 16),
		logger: logger,
	}, nil
}

// OnChange registers a callback to run on every flushed batch.
// Callbacks run on the watcher goroutine, so they must return quickly.
// Must be called before Start.
func (w *Watcher) OnChange(fn func(Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start begins watching. The watcher stops when ctx is canceled; Events is
// closed on shutdown.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.mu.Unlock()

	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.logger.Info("watching table files", "dir", w.dir)
	go w.loop(ctx)
	return nil
}

// Events returns the channel of flushed change batches.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops the underlying filesystem watcher.
// Canceling the Start context is the usual shutdown path; Close covers
// watchers that were never started.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// loop batches raw filesystem events and flushes after a quiet period.
func (w *Watcher) loop(ctx context.Context) {
	var pending []string

	flushTimer := time.NewTimer(debounce)
	flushTimer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		ev := Event{Paths: pending, Timestamp: time.Now()}
		pending = nil

		w.logger.Debug("table files changed", "paths", ev.Paths)
		w.mu.Lock()
		callbacks := w.callbacks
		w.mu.Unlock()
		for _, fn := range callbacks {
			fn(ev)
		}

		// Drop the event if nobody is draining the channel; callbacks
		// have already run, so invalidation is not lost.
		select {
		case w.events <- ev:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.fsw.Close()
			close(w.events)
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				close(w.events)
				return
			}
			if !w.relevant(event) {
				continue
			}
			if !slices.Contains(pending, event.Name) {
				pending = append(pending, event.Name)
			}
			flushTimer.Reset(debounce)

		case <-flushTimer.C:
			flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				close(w.events)
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// relevant reports whether a raw event touches a table file in a way that
// can change its contents. Chmod-only events are noise.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	return slices.Contains(w.files, name)
}
