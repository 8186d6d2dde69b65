// Package secrets holds the shared request secret and hot-reloads it when
// the config file changes.
package secrets

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Source holds the current shared secret. Safe for concurrent use.
type Source struct {
	v atomic.Value
}

// NewSource creates a Source with the given initial secret.
func NewSource(secret string) *Source {
	s := &Source{}
	s.v.Store(secret)
	return s
}

// Secret returns the current shared secret.
func (s *Source) Secret() string {
	return s.v.Load().(string)
}

// Set replaces the current shared secret.
func (s *Source) Set(secret string) {
	s.v.Store(secret)
}

// ReloadFunc re-reads the configuration and returns the current secret.
type ReloadFunc func() (string, error)

// Watch starts an fsnotify watcher on the directory holding configPath and
// refreshes src whenever the file changes, until ctx is cancelled.
//
// The directory is watched rather than the file because editors and config
// management tools replace files via rename, which drops a file-level watch.
// Events are debounced since a rewrite often arrives as several operations
// in quick succession.
func Watch(ctx context.Context, src *Source, configPath string, logger *slog.Logger, reload ReloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("secret watcher: started", slog.String("config", abs))

	// reloadTimer debounces bursts of file events.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("secret watcher: stopped")
			return nil

		case <-reloadCh:
			secret, reloadErr := reload()
			if reloadErr != nil {
				logger.Warn("secret watcher: reload failed", slog.String("error", reloadErr.Error()))
				continue
			}
			if secret != src.Secret() {
				src.Set(secret)
				logger.Info("secret watcher: shared secret rotated")
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("secret watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
