package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long changes must settle before a tick is delivered.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a SQLite database file and delivers a tick after writes
// settle, so the dashboard can refresh when another process touches the data.
// It watches the file's directory because editors and SQLite itself replace
// or append sidecar files rather than rewriting the path in place.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	dir      string
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending time.Time
	running bool

	stopCh chan struct{}
	doneCh chan struct{}
	ticks  chan time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the settle window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger attaches a logger for event diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Watcher for the database at dbPath.
func New(dbPath string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		ticks:    make(chan time.Time, 1),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Ticks returns the channel that receives a value once changes settle.
// Consecutive bursts coalesce into a single tick.
func (w *Watcher) Ticks() <-chan time.Time {
	return w.ticks
}

// Start begins watching the database file's directory.
// This method is non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching database file", zap.String("path", w.path))

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
// It is safe to call more than once, and before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
		// The event loop has exited; nothing sends on ticks anymore.
		close(w.ticks)
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("failed to close file watcher", zap.Error(err))
	}
}

// run is the main event loop for the watcher.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// Settle timer for batching rapid writes
	settle := time.NewTicker(100 * time.Millisecond)
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-settle.C:
			w.flushSettled()
		}
	}
}

// handleEvent records a relevant filesystem event for debounced delivery.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.relevant(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // Ignore chmod, etc.
	}

	w.logger.Debug("database change detected",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// flushSettled delivers a tick once the last change is older than the
// debounce window. The send never blocks; an unconsumed tick coalesces.
func (w *Watcher) flushSettled() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	select {
	case w.ticks <- time.Now():
	default:
	}
}

// relevant reports whether a changed path belongs to the watched database.
// SQLite writes land in the journal or WAL sidecars before the main file,
// so those count as database changes too.
func (w *Watcher) relevant(name string) bool {
	clean := filepath.Clean(name)
	switch clean {
	case w.path, w.path + "-wal", w.path + "-journal", w.path + "-shm":
		return true
	}
	return false
}
