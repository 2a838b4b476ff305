// Package watch re-runs a function whenever one file changes.
//
// The file's directory is watched rather than the file itself, so editors that
// save by writing a temporary file and renaming it over the original are seen.
// Bursts of events are debounced into a single run, and runs never overlap.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/plugmig/errors"
	"github.com/teranos/plugmig/logger"
)

// Func is called after the watched file changed.
type Func func(ctx context.Context) error

// Watcher watches a single file.
type Watcher struct {
	file     string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	trigger chan struct{}
}

// New starts watching file. Call Close when done, or let Run close it.
func New(file string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", file)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", dir)
	}

	return &Watcher{
		file:     abs,
		debounce: debounce,
		watcher:  fw,
		trigger:  make(chan struct{}, 1),
	}, nil
}

// File is the absolute path being watched.
func (w *Watcher) File() string { return w.file }

// Run calls fn once per debounced change until ctx is done, then closes the
// watcher. An error from fn is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debugw("Watched file changed",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("File watcher error", logger.FieldError, err)

		case <-w.trigger:
			if err := fn(ctx); err != nil {
				logger.Errorw("Run after change failed",
					logger.FieldFile, w.file,
					logger.FieldError, err)
			}
		}
	}
}

// Close stops the debounce timer and the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.file {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// schedule restarts the debounce timer. When it fires, one pending run is
// queued; further triggers while one is queued are dropped.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}
