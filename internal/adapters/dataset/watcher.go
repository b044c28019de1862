package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/avaliece/pkg/logger"
	"github.com/okian/avaliece/pkg/metrics"
)

// Watcher invalidates a Loader whenever its dataset file is written,
// created, removed or renamed. The parent directory is watched so the file
// can be replaced atomically.
type Watcher struct {
	mu      sync.Mutex
	loader  *Loader
	target  string
	watcher *fsnotify.Watcher
	log     logger.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher for loader's dataset path.
func NewWatcher(loader *Loader, log logger.Logger) *Watcher {
	if log == nil {
		log = logger.Get().Named("dataset-watcher")
	}
	return &Watcher{
		loader: loader,
		target: filepath.Clean(loader.Path()),
		log:    log,
	}
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrWatcherActive
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(w.target)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(ctx)

	w.log.Info(ctx, "watching dataset", logger.String("path", w.target))
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done, fw := w.doneCh, w.watcher
	w.mu.Unlock()

	<-done
	if err := fw.Close(); err != nil {
		w.log.Warn(context.Background(), "closing watcher", logger.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error(ctx, "watcher error", logger.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.target {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.loader.Invalidate()
	metrics.RecordDatasetInvalidation()
	w.log.Debug(ctx, "dataset changed", logger.String("op", ev.Op.String()))
}
