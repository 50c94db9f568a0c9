// --- START OF NEW FILE internal/cli/watch/watch.go ---
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when a non-positive debounce is given.
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-runs a callback whenever a single file changes.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher for path. The file must exist.
func New(path string, debounce time.Duration, handler slog.Handler) (*Watcher, error) { // minimal comment
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path '%s': %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch target '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("watch target '%s' is a directory", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if handler == nil {
		handler = slog.DiscardHandler
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		logger:   slog.New(handler).With(slog.String("component", "watcher"), slog.String("path", abs)),
	}, nil
}

// Run blocks until ctx is cancelled, calling onChange once per burst of
// writes to the file. The parent directory is watched so editors that save
// by rename are still seen. Errors from onChange are logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch '%s': %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("Watching for changes", slog.Duration("debounce", w.debounce))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watch stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("Change detected", slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", slog.Any("error", err))

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return nil
				}
				w.logger.Error("Re-run after change failed", slog.Any("error", err))
			}
		}
	}
}

// --- END OF NEW FILE internal/cli/watch/watch.go ---
