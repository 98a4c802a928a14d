// Package watch implements the file watcher (spec.md §4.7): it wraps an
// OS-level change notifier and emits debounced types.ChangeEvent values
// for a monitoring pipeline to consume.
//
// Grounded almost directly on the teacher's internal/indexing/watcher.go:
// recursive fsnotify.Add with symlink-cycle guard, directory-create
// handling, and a per-path debounce. The event vocabulary is renamed to
// spec.md's ChangeEvent{repo_root, path, kind, timestamp}; rename pairing
// (absent from the teacher, which treats a Rename op as a same-path
// Write) is added to satisfy spec.md §4.7's Renamed{old,new} kind and
// Open Question 4 (rename leaves no stale old-path nodes once paired).
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/uastgraph/core/internal/config"
	"github.com/uastgraph/core/internal/debug"
	"github.com/uastgraph/core/internal/scan"
	"github.com/uastgraph/core/internal/types"
)

// Watcher monitors a repository root for file system changes and emits
// debounced types.ChangeEvent values on its Events channel.
type Watcher struct {
	cfg      *config.Config
	scanner  *scan.Scanner
	repoRoot string

	fsw *fsnotify.Watcher

	debounce time.Duration
	out      chan types.ChangeEvent

	mu            sync.Mutex
	pending       map[string]*pendingEvent
	pendingRename map[string]*pendingEvent // keyed by old path, awaiting a paired Create

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	errCount int64
}

type pendingEvent struct {
	event types.ChangeEvent
	timer *time.Timer
}

// New builds a Watcher rooted at cfg.ProjectRoot. scanner supplies the
// same inclusion/exclusion/dependency-mode filtering a bulk scan would
// apply, so a live event and a bulk scan never disagree about whether a
// path is indexable.
func New(cfg *config.Config, scanner *scan.Scanner) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := time.Duration(cfg.DebounceDurationMs) * time.Millisecond
	if debounce <= 0 {
		debounce = time.Duration(config.DefaultDebounceDurationMs) * time.Millisecond
	}
	queueSize := cfg.MaxQueueSize
	if queueSize <= 0 {
		queueSize = config.DefaultMaxQueueSize
	}

	return &Watcher{
		cfg:           cfg,
		scanner:       scanner,
		repoRoot:      cfg.ProjectRoot,
		fsw:           fsw,
		debounce:      debounce,
		out:           make(chan types.ChangeEvent, queueSize),
		pending:       make(map[string]*pendingEvent),
		pendingRename: make(map[string]*pendingEvent),
	}, nil
}

// Events returns the channel debounced ChangeEvents are delivered on. The
// channel is closed after Stop has flushed pending events.
func (w *Watcher) Events() <-chan types.ChangeEvent {
	return w.out
}

// Start adds recursive watches under the repository root and begins
// emitting events. Start returns once the initial watch tree is
// established; event delivery continues on a background goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	if err := w.addWatches(w.repoRoot); err != nil {
		return fmt.Errorf("watch: add watches under %s: %w", w.repoRoot, err)
	}

	w.wg.Add(1)
	go w.loop()

	return nil
}

// Stop cancels event processing, flushes any events still pending behind
// a debounce timer, and closes the Events channel. Stop blocks until the
// flush completes.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	if err := w.fsw.Close(); err != nil {
		debug.LogWatch("watch: error closing fsnotify watcher: %v\n", err)
	}
	w.wg.Wait()

	w.mu.Lock()
	for path, pe := range w.pending {
		pe.timer.Stop()
		w.emit(pe.event)
		delete(w.pending, path)
	}
	for path, pe := range w.pendingRename {
		pe.timer.Stop()
		w.emit(pe.event)
		delete(w.pendingRename, path)
	}
	w.mu.Unlock()

	close(w.out)
	return nil
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if real, err := filepath.EvalSymlinks(path); err == nil {
			if visited[real] {
				return filepath.SkipDir
			}
			visited[real] = true
		}
		if path != root && w.scanner.ShouldSkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			debug.LogWatch("watch: failed to add watch for %s: %v\n", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
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
			w.errCount++
			debug.LogWatch("watch: fsnotify error: %v\n", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name
	info, statErr := os.Stat(path)

	if statErr != nil {
		if ev.Op&fsnotify.Rename != 0 {
			w.queueRename(path)
		} else if ev.Op&fsnotify.Remove != 0 {
			w.queue(types.ChangeEvent{RepoRoot: w.repoRoot, Path: path, Kind: types.ChangeDeleted})
		}
		return
	}

	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 && !w.scanner.ShouldSkipDir(path) {
			if err := w.fsw.Add(path); err != nil {
				debug.LogWatch("watch: failed to add watch for new directory %s: %v\n", path, err)
			}
		}
		return
	}

	if !w.scanner.ShouldProcessFile(path, info.Size()) {
		return
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		w.resolveRenamePairing(path)
	case ev.Op&fsnotify.Write != 0:
		w.queue(types.ChangeEvent{RepoRoot: w.repoRoot, Path: path, Kind: types.ChangeModified})
	case ev.Op&fsnotify.Rename != 0:
		w.queueRename(path)
	case ev.Op&fsnotify.Remove != 0:
		w.queue(types.ChangeEvent{RepoRoot: w.repoRoot, Path: path, Kind: types.ChangeDeleted})
	}
}

// queueRename starts a grace window waiting for a same-debounce-window
// Create that would complete the rename (spec.md §4.7 Renamed{old,new}).
// If no Create arrives, the path is genuinely gone and the event
// degrades to Deleted.
func (w *Watcher) queueRename(oldPath string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.pendingRename[oldPath]; ok {
		existing.timer.Stop()
	}

	pe := &pendingEvent{event: types.ChangeEvent{
		RepoRoot: w.repoRoot,
		Path:     oldPath,
		Kind:     types.ChangeDeleted,
	}}
	pe.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		cur, ok := w.pendingRename[oldPath]
		if ok {
			delete(w.pendingRename, oldPath)
		}
		w.mu.Unlock()
		if ok {
			w.emit(cur.event)
		}
	})
	w.pendingRename[oldPath] = pe
}

// resolveRenamePairing pairs a Create event against the most recent
// unresolved rename, if one is outstanding, emitting Renamed{old,new}
// instead of two independent events.
func (w *Watcher) resolveRenamePairing(newPath string) {
	w.mu.Lock()
	var oldPath string
	for path, pe := range w.pendingRename {
		pe.timer.Stop()
		delete(w.pendingRename, path)
		oldPath = path
		break
	}
	w.mu.Unlock()

	if oldPath == "" {
		w.queue(types.ChangeEvent{RepoRoot: w.repoRoot, Path: newPath, Kind: types.ChangeCreated})
		return
	}

	w.queue(types.ChangeEvent{
		RepoRoot: w.repoRoot,
		Path:     newPath,
		OldPath:  oldPath,
		Kind:     types.ChangeRenamed,
	})
}

// queue coalesces ev with any pending event for the same path, resetting
// the debounce timer and keeping the latest kind — except that a pending
// Renamed absorbs an immediately following Modified rather than being
// overwritten by it (spec.md §4.7).
func (w *Watcher) queue(ev types.ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := ev.Path
	if existing, ok := w.pending[key]; ok {
		existing.timer.Stop()
		if existing.event.Kind == types.ChangeRenamed && ev.Kind == types.ChangeModified {
			ev = existing.event
		}
		existing.event = ev
		existing.timer = time.AfterFunc(w.debounce, w.flushFunc(key))
		return
	}

	pe := &pendingEvent{event: ev}
	pe.timer = time.AfterFunc(w.debounce, w.flushFunc(key))
	w.pending[key] = pe
}

func (w *Watcher) flushFunc(key string) func() {
	return func() {
		w.mu.Lock()
		pe, ok := w.pending[key]
		if ok {
			delete(w.pending, key)
		}
		w.mu.Unlock()
		if ok {
			w.emit(pe.event)
		}
	}
}

func (w *Watcher) emit(ev types.ChangeEvent) {
	ev.Timestamp = time.Now()
	select {
	case w.out <- ev:
	default:
		// Backpressure: the bounded channel is full, so this new event is
		// discarded rather than blocking. Events already in the channel,
		// including older ones for the same path, are kept; the oldest
		// event is not the one dropped. Modified/Created are idempotent at
		// the file level so the next live event (or a future bulk
		// reindex) recovers the content.
		debug.LogWatch("watch: dropping event for %s, consumer channel full\n", ev.Path)
	}
}

// ErrorCount reports the number of fsnotify-level errors observed since
// Start.
func (w *Watcher) ErrorCount() int64 {
	return w.errCount
}
