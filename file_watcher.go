package union

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/capitan"
)

// FileWatcher follows a page document on disk.
type FileWatcher struct {
	path string
}

// NewFileWatcher creates a FileWatcher for the document at path.
func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{path: filepath.Clean(path)}
}

// Watch emits the document, then emits it again whenever its contents
// change. The parent directory is watched so a document replaced by rename
// keeps being followed. Writes that leave the contents unchanged are not
// re-emitted; read and fsnotify errors emit WatcherFailed.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch document %s: %w", w.path, err)
	}

	out := make(chan []byte)
	go w.run(ctx, fw, out)
	return out, nil
}

func (w *FileWatcher) run(ctx context.Context, fw *fsnotify.Watcher, out chan<- []byte) {
	defer close(out)
	defer fw.Close()

	var last []byte
	emit := func() bool {
		doc, err := os.ReadFile(w.path)
		if err != nil {
			w.failed(ctx, err)
			return true
		}
		if last != nil && bytes.Equal(doc, last) {
			return true
		}
		select {
		case out <- doc:
			last = doc
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !emit() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.touches(ev) {
				continue
			}
			if !emit() {
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.failed(ctx, err)
		}
	}
}

// touches reports whether ev may have changed the document's contents.
func (w *FileWatcher) touches(ev fsnotify.Event) bool {
	return filepath.Clean(ev.Name) == w.path && ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *FileWatcher) failed(ctx context.Context, err error) {
	capitan.Emit(ctx, WatcherFailed,
		KeyPath.Field(w.path),
		KeyError.Field(err.Error()),
	)
}
