package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"podium/internal/logging"
	"podium/internal/services"
)

// RunFunc starts one labeling pass. The watch command supplies a
// function that reloads the catalog before running, so each pass sees
// the row store that triggered it.
type RunFunc func(ctx context.Context) error

// Watcher triggers labeling runs when the row store settles after a
// change.
type Watcher struct {
	path     string
	debounce time.Duration
	run      RunFunc
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// New builds a watcher over the row store at path and registers the
// filesystem subscription. Callers must Close the watcher when done.
func New(path string, debounce time.Duration, run RunFunc, logger *slog.Logger) (*Watcher, error) {
	if path == "" || run == nil {
		return nil, services.Wrap(services.ErrConfiguration, "watcher", "new",
			"watcher requires a row store path and a run function", nil)
	}
	if debounce <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "watcher", "new",
			"debounce must be positive", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, services.Wrap(services.ErrFatal, "watcher", "new", "create filesystem watcher", err)
	}
	// Watching the directory keeps the subscription alive across the
	// rename the ingest pipeline lands the file with.
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fsw.Close()
		return nil, services.Wrap(services.ErrConfiguration, "watcher", "new", "create row store directory", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, services.Wrap(services.ErrConfiguration, "watcher", "new", "watch row store directory", err)
	}

	return &Watcher{path: path, debounce: debounce, run: run, logger: logger, fsw: fsw}, nil
}

// Close releases the filesystem subscription. Watch returns once the
// watcher is closed.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Watch blocks until ctx is cancelled or the watcher is closed,
// starting a labeling run each time the row store has been quiet for
// the debounce window. A failed run is logged and watching continues.
func (w *Watcher) Watch(ctx context.Context) error {
	logger := logging.WithContext(ctx, w.logger)
	logger.Info("watching row store",
		logging.String("path", w.path),
		logging.Duration("debounce", w.debounce))

	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("row store changed",
				logging.String("op", event.Op.String()))
			settled = time.After(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("filesystem watch error", logging.Error(err))

		case <-settled:
			settled = nil
			logger.Info("row store settled; starting labeling run")
			if err := w.run(ctx); err != nil {
				if ctx.Err() != nil {
					logger.Info("watch stopped")
					return nil
				}
				logger.Error("labeling run failed; watch continues", logging.Error(err))
			}
		}
	}
}
