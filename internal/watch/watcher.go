// Package watch reports debounced changes to the image folder being browsed.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"imgmeta/internal/log"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 250 * time.Millisecond

// FolderChange is delivered once a burst of events in the watched folder
// has settled.
type FolderChange struct {
	Folder    string
	Paths     []string
	Timestamp time.Time
}

// Watcher monitors a single folder using fsnotify. Events inside the
// folder are coalesced for the debounce interval before a FolderChange is
// sent.
type Watcher struct {
	// Folder currently being watched, empty when none
	folder string

	debounce time.Duration
	filter   func(name string) bool

	// Channel to receive coalesced changes
	changeChan chan FolderChange

	// Channel to signal stop
	stopChan chan struct{}
	done     chan struct{}

	fsWatcher *fsnotify.Watcher

	// Guards folder, running and the pending batch
	mutex    sync.Mutex
	running  bool
	stopped  bool
	stopOnce sync.Once
	pending  map[string]struct{}
	timer    *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFilter only reports events whose base name satisfies keep.
// Removals always pass so that deleted entries disappear from the list.
func WithFilter(keep func(name string) bool) Option {
	return func(w *Watcher) { w.filter = keep }
}

// New creates a folder watcher using fsnotify.
func New(debounce time.Duration, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		debounce:   debounce,
		changeChan: make(chan FolderChange, 4),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
		fsWatcher:  fsWatcher,
		pending:    map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch switches the watcher to dir. The previous folder is dropped even
// when dir cannot be watched, and pending events for it are discarded.
func (w *Watcher) Watch(dir string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.folder != "" {
		if err := w.fsWatcher.Remove(w.folder); err != nil {
			log.LogWithFields(log.F("directory", w.folder), log.F("error", err)).Debug("Failed to remove watch")
		}
		w.folder = ""
	}
	w.resetPending()

	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	w.folder = filepath.Clean(dir)
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// Folder returns the folder currently being watched.
func (w *Watcher) Folder() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.folder
}

// Changes returns the channel that delivers coalesced folder changes.
// It is closed by Stop.
func (w *Watcher) Changes() <-chan FolderChange {
	return w.changeChan
}

// Start begins the event loop.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if w.stopped {
		return fmt.Errorf("watcher is stopped")
	}
	w.running = true

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	removed := event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
	if !removed && w.filter != nil && !w.filter(filepath.Base(event.Name)) {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.running || w.folder == "" || filepath.Dir(event.Name) != w.folder {
		return
	}
	w.pending[event.Name] = struct{}{}
	if w.timer == nil {
		folder := w.folder
		w.timer = time.AfterFunc(w.debounce, func() { w.flush(folder) })
	} else {
		w.timer.Reset(w.debounce)
	}
}

func (w *Watcher) flush(folder string) {
	w.mutex.Lock()
	if !w.running || w.folder != folder || len(w.pending) == 0 {
		w.mutex.Unlock()
		return
	}
	change := FolderChange{Folder: folder, Timestamp: time.Now()}
	for p := range w.pending {
		change.Paths = append(change.Paths, p)
	}
	w.resetPending()

	// Send non-blockingly; a queued change already triggers a full reload.
	select {
	case w.changeChan <- change:
	default:
		log.LogWithFields(log.F("directory", folder)).Debug("Change channel is full, dropped change")
	}
	w.mutex.Unlock()
}

// resetPending must be called with the mutex held.
func (w *Watcher) resetPending() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = map[string]struct{}{}
}

// Stop halts the watcher and closes the change channel. A stopped
// watcher cannot be restarted.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mutex.Lock()
		wasRunning := w.running
		w.running = false
		w.stopped = true
		w.resetPending()
		close(w.stopChan)
		w.mutex.Unlock()

		if wasRunning {
			<-w.done
		}
		if err := w.fsWatcher.Close(); err != nil {
			log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
		}

		w.mutex.Lock()
		close(w.changeChan)
		w.mutex.Unlock()
	})
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.running
}
