package jsonrepo

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type Watcher interface {
	Watch(ctx context.Context) error
}

// fsnotifyWatcher reloads the repository whenever the data file changes on disk.
type fsnotifyWatcher struct {
	watcher    *fsnotify.Watcher
	filename   string
	reloadFunc func(ctx context.Context) error
}

type noOpWatcher struct{}

func (w *noOpWatcher) Watch(ctx context.Context) error { return nil }

func NewNoOpWatcher() Watcher {
	return &noOpWatcher{}
}

// NewFsnotifyWatcher watches the directory holding filename, since editors and
// atomic writers replace the file rather than writing to it in place.
func NewFsnotifyWatcher(filename string, reloadFunc func(ctx context.Context) error) (*fsnotifyWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &fsnotifyWatcher{
		watcher:    fsWatcher,
		filename:   filepath.Clean(filename),
		reloadFunc: reloadFunc,
	}, nil
}

// Watch starts watching in the background until ctx is cancelled.
func (w *fsnotifyWatcher) Watch(ctx context.Context) error {
	dir := filepath.Dir(w.filename)
	if err := w.watcher.Add(dir); err != nil {
		_ = w.watcher.Close()
		return fmt.Errorf("failed to start watching %s: %w", dir, err)
	}

	go func() {
		defer w.watcher.Close()

		for {
			select {
			case <-ctx.Done():
				log.Println("INFO: Stopping file watcher.")
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}

				if !w.relevant(event) {
					continue
				}

				log.Printf("INFO: Change detected in %s. Reloading data.", event.Name)
				if err := w.reloadFunc(ctx); err != nil {
					log.Printf("ERROR: failed to hot-reload data: %v", err)
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("ERROR: file watcher error: %v", err)
			}
		}
	}()

	log.Printf("INFO: Watching for changes to data file: %s", w.filename)
	return nil
}

// relevant reports whether event touches the data file itself. Lock and
// temporary files written alongside it are ignored.
func (w *fsnotifyWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.filename {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
