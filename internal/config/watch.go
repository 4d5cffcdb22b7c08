package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"astrochat/internal/logging"
)

// Watch re-reads the config file whenever it changes on disk and delivers
// the new value to onChange, until ctx is cancelled. Theme and language
// edits take effect in the running TUI this way. Unparseable intermediate
// writes (editors often truncate-then-write) are skipped.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: most editors replace the file,
	// which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, err := LoadFrom(path)
				if err != nil {
					logging.Boot("config reload skipped: %v", err)
					continue
				}
				logging.Boot("config reloaded from %s", path)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Boot("config watch error: %v", err)
			}
		}
	}()
	return nil
}
