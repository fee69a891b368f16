// Package watch provides file watching functionality for unit changes.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/satishbabariya/fnsql-go/internal/debug"
)

// DefaultDebounce is how long the watcher waits after the last change.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a set of files for changes
type Watcher struct {
	files    map[string]bool
	callback func() error
	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}
	started  bool

	// Debounce delays the callback until no change was seen for this long.
	Debounce time.Duration
	// OnError receives callback and watcher errors.
	OnError func(error)
}

// NewWatcher creates a watcher calling callback after any of files changes.
func NewWatcher(files []string, callback func() error) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		callback: callback,
		watcher:  watcher,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		Debounce: DefaultDebounce,
		OnError:  func(error) {},
	}

	// Directories are watched so renames by editors are seen.
	dirs := make(map[string]bool)
	for _, f := range files {
		absPath, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		w.files[absPath] = true
		dir := filepath.Dir(absPath)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch directory: %w", err)
		}
	}
	return w, nil
}

// Start starts watching in a background goroutine.
func (w *Watcher) Start() {
	w.started = true
	go w.loop()
}

func (w *Watcher) loop() {
	defer close(w.stopped)

	debounceTimer := time.NewTimer(w.Debounce)
	debounceTimer.Stop()
	var debounceCh <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			eventPath, err := filepath.Abs(event.Name)
			if err != nil || !w.files[eventPath] {
				continue
			}
			debug.Debug("Unit changed", "file", eventPath, "op", event.Op.String())
			debounceTimer.Reset(w.Debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			debounceCh = nil
			if err := w.callback(); err != nil {
				w.OnError(fmt.Errorf("watch callback: %w", err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.OnError(fmt.Errorf("watch: %w", err))

		case <-w.done:
			debounceTimer.Stop()
			return
		}
	}
}

// Stop stops watching and waits for a running callback to return.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	if w.started {
		<-w.stopped
	}
	return err
}
