package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/vrs"
)

// Watcher reloads a tuning file when it changes on disk.
//
// The containing directory is watched rather than the file itself so that
// editors which save by renaming a temporary file are picked up.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher

	closeOnce sync.Once
}

// NewWatcher starts watching path. Events are delivered by Run.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	return &Watcher{path: abs, watcher: fsw}, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls fn with the reloaded tuning, or the load error, after every
// create or write of the file. It blocks until ctx is done or Close is
// called and then releases the underlying watcher.
func (w *Watcher) Run(ctx context.Context, fn func(Tuning, error)) error {
	defer w.Close()
	log := vrs.Logger().With("path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			t, err := Load(w.path)
			if err != nil {
				log.Warn("config: reload failed", "err", err)
			} else {
				log.Debug("config: reloaded", "op", e.Op.String())
			}
			fn(t, err)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config: watch error", "err", err)
		}
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}

// Watch is NewWatcher followed by Run.
func Watch(ctx context.Context, path string, fn func(Tuning, error)) error {
	w, err := NewWatcher(path)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}
