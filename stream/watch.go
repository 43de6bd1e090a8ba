package stream

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigDebounce is the default wait after a config file event before the
// file is read.
const ConfigDebounce = 200 * time.Millisecond

// WatchConfig watches the config file at path and calls fn with the new
// configuration each time the file is written or replaced. Files that
// fail to parse are logged and skipped. fn is called on the watcher's
// goroutine. WatchConfig returns when ctx is cancelled.
func WatchConfig(ctx context.Context, path string, debounce time.Duration, log *slog.Logger, fn func(*Config)) error {
	if debounce < 0 {
		debounce = ConfigDebounce
	}
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// The directory is watched so that editors replacing the file by
	// rename are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  = make(chan struct{}, 1)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debug("config changed", "path", path, "op", ev.Op)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			c, err := ReadConfig(path)
			if err != nil {
				log.Warn("ignoring config change", "path", path, "error", err)
				continue
			}
			fn(c)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher", "path", path, "error", err)
		}
	}
}
