package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/hhushhas/fingerpain/internal/model"
)

// Sink persists browser contexts.
type Sink interface {
	UpsertBrowserContext(ctx context.Context, bc model.BrowserContext) error
}

// Watcher feeds a Registry from *.json files in a directory.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	registry  *Registry
	sink      Sink
	logger    *slog.Logger
}

// NewWatcher creates dir if needed and starts watching it. sink may be nil.
func NewWatcher(dir string, reg *Registry, sink Sink, logger *slog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create context dir: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		fsWatcher: fsw,
		dir:       dir,
		registry:  reg,
		sink:      sink,
		logger:    logger,
	}, nil
}

// Scan loads every context file already present.
func (w *Watcher) Scan(ctx context.Context) error {
	paths, err := filepath.Glob(filepath.Join(w.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		w.load(ctx, path)
	}
	return nil
}

// Run handles filesystem events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ctx, event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("browser context watcher error", "err", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) handleFSEvent(ctx context.Context, event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	w.load(ctx, event.Name)
}

func (w *Watcher) load(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Debug("read browser context", "path", path, "err", err)
		return
	}
	// Writers may truncate before writing; the follow-up write event carries the content.
	if len(data) == 0 {
		return
	}
	bc, err := ParsePage(data, info.ModTime())
	if err != nil {
		w.logger.Debug("skip browser context", "path", path, "err", err)
		return
	}
	if !w.registry.Set(bc) {
		return
	}
	w.logger.Debug("browser context updated", "browser", bc.Browser, "domain", bc.Domain)
	if w.sink == nil {
		return
	}
	if err := w.sink.UpsertBrowserContext(ctx, bc); err != nil {
		w.logger.Error("persist browser context", "browser", bc.Browser, "err", err)
	}
}
