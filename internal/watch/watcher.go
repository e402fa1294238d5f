package watch

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Triggerer receives change notifications; satisfied by Runner.
type Triggerer interface {
	Trigger()
}

// Watcher turns filesystem events on one plan file into runner triggers. It
// watches the containing directory rather than the file itself, since many
// editors save by writing a temp file and renaming it over the original,
// which drops a direct file watch.
type Watcher struct {
	path    string
	target  Triggerer
	logger  *zap.Logger
	fsw     *fsnotify.Watcher
	closing chan struct{}
}

// NewWatcher creates a watcher for the given plan file.
func NewWatcher(path string, target Triggerer, logger *zap.Logger) *Watcher {
	return &Watcher{
		path:    filepath.Clean(path),
		target:  target,
		logger:  logger,
		closing: make(chan struct{}),
	}
}

// Start begins watching and blocks until Stop. Events for other files in the
// directory are ignored.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.fsw = fsw

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching plan",
		zap.String("path", w.path),
		zap.String("dir", dir))

	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("plan changed", zap.String("op", ev.Op.String()))
			w.target.Trigger()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-w.closing:
			return nil
		}
	}
}

// Stop ends the watch loop.
func (w *Watcher) Stop() {
	close(w.closing)
	if w.fsw != nil {
		w.fsw.Close()
	}
}
