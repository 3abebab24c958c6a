package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher hot-reloads a catalog file and hands validated catalogs to a
// callback. An invalid edit keeps the previous catalog in place.
type Watcher struct {
	path     string
	logger   *zap.Logger
	onReload func(*Catalog)
	fw       *fsnotify.Watcher
	wg       sync.WaitGroup
	done     chan struct{}
}

// NewWatcher watches path for changes. onReload is called with each
// successfully loaded catalog, including the initial load.
func NewWatcher(path string, logger *zap.Logger, onReload func(*Catalog)) (*Watcher, error) {
	cat, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	onReload(cat)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch catalog directory: %w", err)
	}

	w := &Watcher{
		path:     path,
		logger:   logger,
		onReload: onReload,
		fw:       fw,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cat, err := LoadFile(w.path)
			if err != nil {
				w.logger.Warn("Catalog reload rejected, keeping previous catalog",
					zap.String("path", w.path),
					zap.Error(err),
				)
				continue
			}
			w.logger.Info("Catalog reloaded",
				zap.String("path", w.path),
				zap.Int("supplements", cat.Len()),
			)
			w.onReload(cat)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Catalog watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}
