package discover

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of writes to a single session file (e.g.
// one per streamed token) into a single wake signal.
const watchDebounce = 750 * time.Millisecond

// Watch watches dirs for filesystem events and signals on Signals,
// debounced, whenever something changes. It's an optimisation only: the
// indexer's poll loop works correctly without it, just less promptly.
type Watch struct {
	fsw     *fsnotify.Watcher
	signals chan struct{}
	done    chan struct{}

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewWatch starts watching dirs. Directories that fail to register (e.g.
// permissions) are skipped; if none can be watched, a nil *Watch and nil
// error are returned — callers should fall back to pure polling.
func NewWatch(dirs []string) (*Watch, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	added := 0
	for _, d := range dirs {
		if err := fsw.Add(d); err == nil {
			added++
		}
	}
	if added == 0 {
		fsw.Close()
		return nil, nil
	}

	w := &Watch{
		fsw:     fsw,
		signals: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Signals returns the channel that receives a value (coalesced, never
// blocking the sender) after debounced filesystem activity in the watched
// directories. The channel is never closed; callers multiplex it with their
// own poll timer.
func (w *Watch) Signals() <-chan struct{} {
	return w.signals
}

// Close stops the watcher. Safe to call more than once.
func (w *Watch) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	w.fsw.Close()
}

func (w *Watch) run() {
	for {
		select {
		case <-w.done:
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.bump()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Non-fatal: the poll loop remains the source of truth.
		}
	}
}

// bump restarts the debounce window.
func (w *Watch) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, w.notify)
}

func (w *Watch) notify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.signals <- struct{}{}:
	default:
	}
}
