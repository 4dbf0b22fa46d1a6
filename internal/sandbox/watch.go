package sandbox

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Change is one file event under a watched extension.
type Change struct {
	Path string
	Op   string
}

// Watcher reports changes to the descriptors, the container file and the
// library files of the watched extensions. The server does not need it to
// pick up edits; it lets the developer see what changed.
type Watcher struct {
	w   *fsnotify.Watcher
	log *zap.Logger
}

// NewWatcher watches the extension directories, their library directories
// and the directory of the container file.
func NewWatcher(src Sources, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("sandbox: watch: %w", err)
	}
	dirs := map[string]bool{filepath.Dir(src.ContainerPath): true}
	for _, dir := range src.ExtensionDirs {
		dirs[dir] = true
		if d, err := LoadDescriptor(dir); err == nil {
			for _, m := range descriptorModules(d) {
				dirs[filepath.Dir(m.file)] = true
			}
		}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	return &Watcher{w: w, log: log.Named("watch")}, nil
}

// Run logs changes and forwards them to fn until ctx is done. fn may be nil.
func (w *Watcher) Run(ctx context.Context, fn func(Change)) error {
	defer w.w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			ch, ok := changeOf(ev)
			if !ok {
				continue
			}
			w.log.Info("file changed", zap.String("path", ch.Path), zap.String("op", ch.Op))
			if fn != nil {
				fn(ch)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func changeOf(ev fsnotify.Event) (Change, bool) {
	var op string
	switch {
	case ev.Has(fsnotify.Create):
		op = "create"
	case ev.Has(fsnotify.Write):
		op = "modify"
	case ev.Has(fsnotify.Remove):
		op = "delete"
	case ev.Has(fsnotify.Rename):
		op = "rename"
	default:
		return Change{}, false
	}
	return Change{Path: ev.Name, Op: op}, true
}
