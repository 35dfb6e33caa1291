package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// DefaultDebounce collapses the burst of write events a single copy produces.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads the dataset when its file is written or replaced.
type Watcher struct {
	path     string
	reloader Reloader
	logger   *slog.Logger
	clock    clockwork.Clock
	debounce time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending clockwork.Timer
}

// NewWatcher watches the directory holding path, so that editors and copy
// tools that replace the file by rename are still seen.
func NewWatcher(path string, reloader Reloader, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		reloader: reloader,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
		debounce: DefaultDebounce,
		watcher:  fw,
	}, nil
}

// SetDebounce changes the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// SetClock replaces the clock that times the debounce.
func (w *Watcher) SetClock(c clockwork.Clock) {
	w.clock = c
}

// Watch blocks until ctx is cancelled or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("watching dataset", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("dataset changed", "path", event.Name, "op", event.Op.String())
			w.schedule(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch dataset: %w", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = w.clock.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.reloader.Load(ctx); err != nil {
			w.logger.Warn("dataset reload failed, keeping previous snapshot", "error", err)
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
}
