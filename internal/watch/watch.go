// Package watch invalidates cached templates when their source files change,
// using fsnotify on the template root. It also fans changed template names
// out to subscribers, which is what drives live reload in the preview
// server.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/loomkit/loom/internal/logging"
)

// Invalidator drops cached state for a template name. The template manager
// implements it.
type Invalidator interface {
	Invalidate(name string)
}

// Watcher maps file events below a root directory to template names and
// invalidates them. Events for one file are debounced, since editors tend to
// produce bursts of writes.
type Watcher struct {
	root     string
	inv      Invalidator
	log      logging.Logger
	debounce time.Duration

	fs *fsnotify.Watcher

	mu          sync.Mutex
	subscribers []chan string
	pending     map[string]*time.Timer
}

// New creates a watcher over root. Subdirectories are watched recursively.
func New(root string, inv Invalidator, log logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		inv:      inv,
		log:      log.WithComponent("watch"),
		debounce: 100 * time.Millisecond,
		fs:       fs,
		pending:  make(map[string]*time.Timer),
	}
	if err := w.addRecursive(root); err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

// Subscribe returns a channel receiving the template names of changed files.
// Slow subscribers drop events rather than blocking invalidation.
func (w *Watcher) Subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan string, 16)
	w.subscribers = append(w.subscribers, ch)
	return ch
}

// Run processes file events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(event.Name)
			return
		}
	}

	name, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	name = filepath.ToSlash(name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[name]; ok {
		timer.Stop()
	}
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		subscribers := append([]chan string(nil), w.subscribers...)
		w.mu.Unlock()

		w.inv.Invalidate(name)
		w.log.Debug("template changed", "template", name)
		for _, ch := range subscribers {
			select {
			case ch <- name:
			default:
			}
		}
	})
}
