// Package watch triggers rebuilds when the content tree changes on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/logfields"
)

// Watcher observes a content root recursively and invokes the rebuild
// callback after changes settle.
type Watcher struct {
	root      string
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
}

// New creates a watcher over root. Rebuild is called from the watcher's
// goroutine once per coalesced change burst.
func New(root string, cfg DebounceConfig, rebuild func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryInternal, "create filesystem watcher")
	}

	w := &Watcher{root: root, fsw: fsw, debouncer: NewDebouncer(cfg, rebuild)}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run pumps filesystem events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	go w.debouncer.Run(ctx)
	slog.Info("Watching content tree", logfields.Path(w.root))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if ignored(event.Name) {
		return
	}

	// New directories must be added to the watch set; fsnotify does not
	// recurse on its own.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("Failed to watch new directory",
					logfields.Path(event.Name), logfields.Error(err))
			}
		}
	}

	slog.Debug("Content change observed",
		logfields.Path(event.Name), slog.String("op", event.Op.String()))
	w.debouncer.Notify()
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && !ignored(path) {
			return w.fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "watch content tree").
			WithContext("root", root)
	}
	return nil
}

// ignored filters editor temp files and hidden directories out of the
// rebuild trigger set.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	return strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}
