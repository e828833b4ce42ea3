package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// WatchDebounce coalesces bursts of file events (editors often write a file
// in several steps) into one reload.
var WatchDebounce = 250 * time.Millisecond

// Watch reloads the config at path whenever it is written or replaced and
// calls onChange with the result. A reload that fails to parse or validate
// is delivered as an error and the caller keeps its previous config.
//
// Watch blocks until ctx is cancelled and then returns ctx.Err(). The
// containing directory is watched so atomic renames are picked up.
func Watch(ctx context.Context, path string, logger *log.Logger, onChange func(Config, error)) error {
	if logger == nil {
		logger = log.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Debug("watching config", "path", abs)

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(WatchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Load(abs)
			if err != nil {
				logger.Warn("config reload failed", "path", abs, "err", err)
			} else {
				logger.Info("config reloaded", "path", abs)
			}
			onChange(cfg, err)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "err", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
