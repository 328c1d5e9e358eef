// Package watcher watches the content directory and triggers a debounced rebuild when
// matching files change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// ChangeFunc is called with the sorted set of paths that changed since the last call.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher coalesces file events in one directory into rebuild callbacks. Callbacks never
// overlap; events that arrive while one is running are delivered in the next call.
type Watcher struct {
	dir        string
	extensions []string
	onChange   ChangeFunc
	debounce   time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	pending  map[string]struct{}
	timer    *time.Timer
	fire     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for event output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long the watcher waits for events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for dir. extensions filter which files count (empty = all).
func New(dir string, extensions []string, onChange ChangeFunc, opts ...Option) *Watcher {
	w := &Watcher{
		dir:        filepath.Clean(dir),
		extensions: extensions,
		onChange:   onChange,
		debounce:   defaultDebounce,
		logger:     zap.NewNop(),
		pending:    make(map[string]struct{}),
		fire:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once the directory is registered; events are handled
// in the background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", w.dir)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return errors.New("watcher already started")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fsw = fsw
	w.logger.Info("watching content directory",
		zap.String("dir", w.dir),
		zap.Strings("extensions", w.extensions),
		zap.Duration("debounce", w.debounce))
	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-w.fire:
			if changed := w.drain(); len(changed) > 0 && w.onChange != nil {
				w.logger.Debug("content changed", zap.Strings("paths", changed))
				w.onChange(ctx, changed)
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if filepath.Dir(filepath.Clean(ev.Name)) != w.dir || !matchExtension(ev.Name, w.extensions) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[ev.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(changed)
	return changed
}

// Stop stops the watcher and releases resources. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		if w.fsw != nil {
			_ = w.fsw.Close()
		}
		w.mu.Unlock()
		close(w.done)
	})
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
