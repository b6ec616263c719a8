package audit

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses the burst of events an editor save produces.
const debounce = 200 * time.Millisecond

// Hold keeps the session open until ctx is cancelled, typically by
// SIGINT or SIGTERM. It replaces waiting on something that never resolves.
func Hold(ctx context.Context) {
	slog.Info("holding browser open for manual inspection, interrupt to exit")
	<-ctx.Done()
	slog.Info("hold released", "reason", context.Cause(ctx))
}

// Watch behaves like Hold but calls onChange after each write to path.
// onChange runs on the watch goroutine, so changes are handled one at a
// time and a change during a run is picked up after it finishes.
func Watch(ctx context.Context, path string, onChange func(context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("audit: resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("audit: create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("audit: watch %s: %w", filepath.Dir(abs), err)
	}
	slog.Info("watching target for changes, interrupt to exit", "file", abs)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch released", "reason", context.Cause(ctx))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)

		case <-timer.C:
			slog.Info("target changed, re-running audit", "file", abs)
			onChange(ctx)
		}
	}
}
