package notify

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

// DefaultDebounce is how long the FSWatcher waits for events to stop
// before reporting a change.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports that something below its roots changed. Create, write,
// remove and rename are all treated the same.
type Watcher interface {
	Start(onChange func()) error
	Close() error
}

// WatchFactory builds a watcher over the given directories.
type WatchFactory func(roots ...string) (Watcher, error)

// FSWatcher watches directory trees with fsnotify and coalesces bursts of
// events into one callback.
type FSWatcher struct {
	roots    []string
	debounce time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	onChange func()
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewFSWatcher creates an unstarted watcher over roots.
func NewFSWatcher(debounce time.Duration, log *slog.Logger, roots ...string) *FSWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FSWatcher{
		roots:    roots,
		debounce: debounce,
		log:      logger.OrDefault(log),
		closeCh:  make(chan struct{}),
	}
}

// FSWatchFactory returns a WatchFactory producing FSWatchers.
func FSWatchFactory(debounce time.Duration, log *slog.Logger) WatchFactory {
	return func(roots ...string) (Watcher, error) {
		return NewFSWatcher(debounce, log, roots...), nil
	}
}

// Start begins watching every directory below the roots.
func (w *FSWatcher) Start(onChange func()) error {
	fsw, e := fsnotify.NewWatcher()
	if e != nil {
		return e
	}

	w.mu.Lock()
	w.fsw = fsw
	w.onChange = onChange
	w.mu.Unlock()

	for _, root := range w.roots {
		if e := w.addRecursive(root); e != nil {
			_ = fsw.Close()
			return e
		}
	}

	w.closedWg.Add(1)
	go w.processLoop()
	return nil
}

// addRecursive watches root and all directories below it.
func (w *FSWatcher) addRecursive(root string) error {
	info, e := os.Stat(root)
	if e != nil {
		return e
	}
	if !info.IsDir() {
		return w.fsw.Add(root)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if e := w.fsw.Add(p); e != nil {
				w.log.Debug("watch failed", "path", p, "error", e)
			}
		}
		return nil
	})
}

func (w *FSWatcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, e := os.Stat(ev.Name); e == nil && info.IsDir() {
					_ = w.addRecursive(ev.Name)
				}
			}
			w.schedule()

		case e, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", e)
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *FSWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *FSWatcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	fn := w.onChange
	w.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Close stops the watcher. Pending changes are discarded.
func (w *FSWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	fsw := w.fsw
	w.mu.Unlock()

	w.closedWg.Wait()
	if fsw == nil {
		return nil
	}
	if e := fsw.Close(); e != nil && !errors.Is(e, fsnotify.ErrClosed) {
		return e
	}
	return nil
}
