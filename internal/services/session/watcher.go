// Package session watches the live Codex auth file and reports changes.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/codex-switcher-tui/internal/logger"
)

const debounceInterval = 100 * time.Millisecond

// Watcher calls onChange, debounced, whenever the watched auth file is
// written, created, removed or renamed.
type Watcher struct {
	watcher       *fsnotify.Watcher
	onChange      func()
	debounceTimer *time.Timer
	stopChan      chan struct{}
	path          string
	dir           string
	wg            sync.WaitGroup
	mu            sync.Mutex
	closeOnce     sync.Once
}

// New creates a watcher that is not yet watching any file.
func New(onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		onChange: onChange,
		stopChan: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.watchLoop()

	return w, nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Watch switches the watcher to path. An empty path stops watching. If the
// file's directory does not exist the path is remembered but not watched;
// watching the same path again retries.
func (w *Watcher) Watch(path string) error {
	path = ExpandPath(path)
	if path != "" {
		path = filepath.Clean(path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if path == w.path && (path == "" || w.dir != "") {
		return nil
	}

	if w.dir != "" {
		if err := w.watcher.Remove(w.dir); err != nil {
			logger.Debug("failed to remove watch", "dir", w.dir, "error", err)
		}
		w.dir = ""
	}
	w.path = path

	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		logger.Warn("auth file directory not available, not watching", "dir", dir, "error", err)
		return nil
	}

	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.dir = dir
	return nil
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("auth file watcher error", "error", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.path == "" || filepath.Base(event.Name) != filepath.Base(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(debounceInterval, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.stopChan:
		return
	default:
	}
	if w.onChange != nil {
		w.onChange()
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
