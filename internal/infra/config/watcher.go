package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"slackmcp/internal/domain"
)

var reloadDebounce = time.Duration(domain.DefaultConfigReloadDebounceMS) * time.Millisecond

// Watcher reloads the config file when it changes on disk and reports
// credential updates through OnCredential.
type Watcher struct {
	loader     *Loader
	configPath string
	logger     *zap.Logger
	current    domain.AuthConfig

	// OnCredential is invoked with the rebuilt credential whenever the
	// auth section of the file changes.
	OnCredential func(domain.Credential)
}

func NewWatcher(loader *Loader, configPath string, current domain.AuthConfig, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		loader:     loader,
		configPath: configPath,
		logger:     logger.Named("config_watcher"),
		current:    current,
	}
}

// Run watches until ctx is cancelled. Events are debounced because editors
// typically emit several writes per save.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: many editors replace the file on
	// save, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(w.configPath)); err != nil {
		return err
	}

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.configPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(reloadDebounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watch error", zap.Error(err))
		case <-pending:
			pending = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	cfg, err := w.loader.Load(ctx, w.configPath)
	if err != nil {
		w.logger.Warn("config reload failed; keeping previous credential", zap.Error(err))
		return
	}
	if cfg.Auth == w.current {
		return
	}
	w.current = cfg.Auth

	cred := cfg.Auth.Credential()
	w.logger.Info("config credential changed", zap.String("kind", string(cred.Kind)))
	if w.OnCredential != nil {
		w.OnCredential(cred)
	}
}
