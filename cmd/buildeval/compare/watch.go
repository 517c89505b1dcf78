package compare

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/1homsi/buildeval/internal/config"
)

// debounce is how long the tree must stay quiet before a re-run.
const debounce = 300 * time.Millisecond

// Watch runs fn once and then again after every burst of changes to the
// directories holding the tracked artifacts, until ctx is done. Runs are
// sequential. An error from fn stops the watch.
func Watch(ctx context.Context, cfg config.Config, fn func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range watchDirs(cfg) {
		if err := w.Add(dir); err != nil {
			slog.Warn("cannot watch directory", "dir", dir, "err", err)
		}
	}
	if len(w.WatchList()) == 0 {
		return fmt.Errorf("nothing to watch under %s or %s", cfg.GoldenOutput(), cfg.GeneratedRoot)
	}

	if err := fn(ctx); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			slog.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			pending = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "err", err)
		case <-pending:
			pending = nil
			slog.Info("artifacts changed, comparing again")
			if err := fn(ctx); err != nil {
				return err
			}
		}
	}
}

// watchDirs returns the existing parent directories of every tracked
// artifact in both trees. Watching directories rather than files survives
// editors that replace files on save.
func watchDirs(cfg config.Config) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, a := range cfg.Artifacts {
		for _, p := range []string{cfg.GoldenPath(a.Path), cfg.GeneratedPath(a.Path)} {
			dir := filepath.Dir(p)
			if seen[dir] {
				continue
			}
			seen[dir] = true
			if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}
