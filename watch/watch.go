// Package watch reports settled changes to table files.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before its change is
// reported. Editors often write a file in several steps.
const DefaultDebounce = 300 * time.Millisecond

// Event names a watched file that changed.
type Event struct {
	Path    string
	Removed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger for watcher activity.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// Watcher watches a fixed set of files. It watches their directories rather
// than the files themselves so that atomic saves (write then rename) are seen.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	files    map[string]bool
	pending  map[string]pendingEvent
	debounce time.Duration
	log      *zap.Logger
	events   chan Event
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

type pendingEvent struct {
	at      time.Time
	removed bool
}

// New creates a watcher for paths. Duplicate paths are watched once.
func New(paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("watch: no paths")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		pending:  make(map[string]pendingEvent),
		debounce: DefaultDebounce,
		log:      zap.NewNop(),
		events:   make(chan Event, 16),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Events delivers settled changes. It is closed once the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start watches the directories of the configured files and returns
// immediately. Events flow until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := w.fsw.Add(d); err != nil {
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return errors.Wrapf(err, "watch %s", d)
		}
		w.log.Debug("watching directory", zap.String("dir", d))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.fsw.Close(); err != nil {
		w.log.Warn("close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.events)

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			if !w.flush(ctx) {
				return
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	if !w.files[name] {
		return
	}
	var removed bool
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		removed = true
	default:
		return
	}
	w.log.Debug("file event", zap.String("path", name), zap.String("op", ev.Op.String()))

	w.mu.Lock()
	w.pending[name] = pendingEvent{at: time.Now(), removed: removed}
	w.mu.Unlock()
}

// flush sends every pending event that has settled. It reports false if the
// watcher was stopped while sending.
func (w *Watcher) flush(ctx context.Context) bool {
	now := time.Now()
	var ready []Event

	w.mu.Lock()
	for path, p := range w.pending {
		if now.Sub(p.at) >= w.debounce {
			ready = append(ready, Event{Path: path, Removed: p.removed})
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Slice(ready, func(i, j int) bool { return ready[i].Path < ready[j].Path })
	for _, ev := range ready {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return false
		case <-w.stopCh:
			return false
		}
	}
	return true
}
