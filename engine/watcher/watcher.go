// Package watcher tracks a directory tree for changes to files matching a
// set of extensions and invokes a callback for each change, delivered on a
// dedicated goroutine behind a 64-event buffer so a slow callback does not
// stall fsnotify until that buffer fills. It does not
// deduplicate repeated events for the same path; that is the registry's job.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flowmesh/orchestrator/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// prunedDirs are never descended into while walking or watching.
var prunedDirs = map[string]bool{
	".git":   true,
	"target": true,
}

// Event describes a single file change.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Callback is invoked once per matching file event; events are not debounced.
type Callback func(Event)

// Watcher watches root for changes to files with one of the given
// extensions and delivers them to callback on a dedicated goroutine.
type Watcher struct {
	root       string
	extensions map[string]bool
	callback   Callback
	log        logger.Logger

	fsw *fsnotify.Watcher

	mu          sync.Mutex
	watchedDirs map[string]struct{}

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher rooted at root, restricted to the given file
// extensions (e.g. ".yaml", ".yml"). It does not start watching until
// Start is called. The logger carried by ctx is used for the lifetime of
// the watcher.
func New(ctx context.Context, root string, extensions []string, callback Callback) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = true
	}
	return &Watcher{
		root:        root,
		extensions:  extSet,
		callback:    callback,
		log:         logger.FromContext(ctx),
		fsw:         fsw,
		watchedDirs: make(map[string]struct{}),
		events:      make(chan Event, 64),
		done:        make(chan struct{}),
	}, nil
}

// Start walks root, subscribes to every non-pruned directory, and begins
// delivering matching events to the callback. It returns once the initial
// walk completes; delivery continues on background goroutines until Stop.
func (w *Watcher) Start() error {
	if err := filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if isPruned(path) {
				return filepath.SkipDir
			}
			w.watchDir(path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to walk watched tree: %w", err)
	}

	w.wg.Add(2)
	go w.readEvents()
	go w.deliverEvents()
	return nil
}

// Stop shuts down the watcher and waits for its goroutines to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) readEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Name == "" {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !isPruned(event.Name) {
				w.watchDir(event.Name)
			}
			return
		}
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.unwatchDir(event.Name)
	}
	if !w.matchesExtension(event.Name) {
		return
	}
	select {
	case w.events <- Event{Path: event.Name, Op: event.Op}:
	case <-w.done:
	}
}

// deliverEvents runs on its own goroutine so a slow or misbehaving callback
// does not back up fsnotify's internal event channel until the buffered
// events channel is full.
func (w *Watcher) deliverEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev := <-w.events:
			w.callback(ev)
		}
	}
}

func (w *Watcher) watchDir(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watchedDirs[dir]; ok {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		w.log.Warn("failed to watch directory", "path", dir, "error", err)
		return
	}
	w.watchedDirs[dir] = struct{}{}
}

func (w *Watcher) unwatchDir(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watchedDirs[dir]; !ok {
		return
	}
	delete(w.watchedDirs, dir)
	_ = w.fsw.Remove(dir)
}

func (w *Watcher) matchesExtension(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

func isPruned(path string) bool {
	return prunedDirs[filepath.Base(path)]
}
