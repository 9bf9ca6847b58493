package promo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the script whenever its file is written or replaced. The
// watcher runs until ctx is cancelled; Close waits for it to stop. The
// directory is watched rather than the file so editors that save by rename
// keep triggering reloads.
func (e *Engine) Watch(ctx context.Context) error {
	if e.path == "" {
		return errors.New("promo: nothing to watch for the embedded script")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	target := filepath.Clean(e.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				e.handleFileEvent(target, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Promo watcher error", "error", err)
			}
		}
	}()

	slog.Info("Watching promo rules", "path", target)
	return nil
}

func (e *Engine) handleFileEvent(target string, event fsnotify.Event) {
	if filepath.Clean(event.Name) != target {
		return
	}
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		if err := e.Reload(); err != nil {
			slog.Error("Promo reload failed, keeping previous rules", "path", target, "error", err)
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		slog.Warn("Promo script removed, keeping previous rules", "path", target)
	}
}

// Close waits for a running watcher to exit. Cancel the context passed to
// Watch first.
func (e *Engine) Close() {
	e.wg.Wait()
}
