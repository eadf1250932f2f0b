package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher feeds file changes under a directory tree into an Ingester.
// Bursts of writes to the same file are collapsed into one index call.
type Watcher struct {
	root       string
	extensions []string
	ingester   *Ingester
	logger     *zap.Logger
	debounce   time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewWatcher(root string, extensions []string, ingester *Ingester, logger *zap.Logger) *Watcher {
	return &Watcher{
		root:       filepath.Clean(root),
		extensions: extensions,
		ingester:   ingester,
		logger:     logger,
		debounce:   defaultDebounce,
		pending:    make(map[string]*time.Timer),
	}
}

// SetDebounce overrides the quiet period before a changed file is indexed.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Start watches the tree, indexes the files already present and returns.
// Events are processed until Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fsw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.fsw = fsw
	w.cancel = cancel
	w.mu.Unlock()

	w.sync(ctx, w.root)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx, fsw)
	}()

	w.logger.Info("watching documents directory",
		zap.String("root", w.root),
		zap.Strings("extensions", w.extensions),
	)
	return nil
}

// Stop halts the watcher and drops pending index calls.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.fsw == nil {
		w.mu.Unlock()
		return
	}
	w.cancel()
	_ = w.fsw.Close()
	w.fsw = nil
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	path := ev.Name
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := fsw.Add(path); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("path", path), zap.Error(err))
			}
			w.sync(ctx, path)
			return
		}
		if w.matches(path) {
			w.schedule(ctx, path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.unschedule(path)
		if w.matches(path) {
			if err := w.ingester.RemoveFile(ctx, path); err != nil {
				w.logger.Warn("failed to remove document", zap.String("path", path), zap.Error(err))
			}
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.index(ctx, path)
	})
}

func (w *Watcher) unschedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) sync(ctx context.Context, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if w.matches(path) {
			w.index(ctx, path)
		}
		return nil
	})
}

func (w *Watcher) index(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	if err := w.ingester.IndexFile(ctx, path); err != nil {
		w.logger.Warn("failed to ingest file", zap.String("path", path), zap.Error(err))
	}
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range w.extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
