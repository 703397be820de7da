package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces the burst of events an editor save produces.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher signals when the config file, or a file it includes, changes on
// disk.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	changed  chan struct{}

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

// NewWatcher watches the directory holding path, since editors often replace
// the file rather than write it in place.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		path:     abs,
		debounce: DefaultWatchDebounce,
		watcher:  fw,
		logger:   logger,
		changed:  make(chan struct{}, 1),
		files:    map[string]struct{}{abs: {}},
		dirs:     map[string]struct{}{filepath.Dir(abs): {}},
	}, nil
}

// Track replaces the set of included files being watched, typically with
// LoadResult.Files after each load. The main config file is always watched.
func (w *Watcher) Track(paths []string) error {
	files := map[string]struct{}{w.path: {}}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		files[filepath.Clean(abs)] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for f := range files {
		dir := filepath.Dir(f)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.files = files
	return nil
}

func (w *Watcher) tracks(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(name)]
	return ok
}

// Changed receives one value per settled burst of writes.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Run forwards change notifications until ctx is cancelled, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

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
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.tracks(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("config file event", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
