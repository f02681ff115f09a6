// Package watcher reloads launcher settings when their file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/mediadl/launcher/internal/logging"
)

// DefaultDebounce coalesces the burst of events one save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches a directory for changes to a fixed set of file names and
// calls onChange once per debounced change. It implements suture.Service.
type Watcher struct {
	dir      string
	files    map[string]bool
	onChange func(path string)
	delay    time.Duration
	logger   zerolog.Logger

	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for the named files inside dir.
func New(dir string, files []string, onChange func(path string)) *Watcher {
	names := make(map[string]bool, len(files))
	for _, f := range files {
		names[f] = true
	}
	return &Watcher{
		dir:      dir,
		files:    names,
		onChange: onChange,
		delay:    DefaultDebounce,
		logger:   logging.With("watcher"),
		debounce: make(map[string]*time.Timer),
	}
}

// String names the service in the suture tree.
func (w *Watcher) String() string {
	return "settings-watcher"
}

// Serve watches until ctx is cancelled.
func (w *Watcher) Serve(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsWatcher.Close()

	// Watch the directory, not the file: atomic saves replace the file.
	if err := fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info().Str("dir", w.dir).Msg("Watching settings")

	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// handleEvent processes a single file system event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Atomic writes (write tmp, rename to target) surface as Create or Rename
	// on the target.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if !w.files[filepath.Base(event.Name)] {
		return
	}
	w.logger.Debug().Str("op", event.Op.String()).Str("path", event.Name).Msg("fsnotify")

	path := event.Name
	w.debounceEvent(path, func() {
		w.logger.Info().Str("path", path).Msg("Settings changed")
		w.onChange(path)
	})
}

// debounceEvent debounces events for the same path.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(w.delay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}

func (w *Watcher) stopTimers() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	for path, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, path)
	}
}
