package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"slackmcp/internal/domain"
	"slackmcp/internal/infra/auth"
	"slackmcp/internal/infra/config"
	"slackmcp/internal/infra/gateway"
	"slackmcp/internal/infra/slack"
	"slackmcp/internal/infra/telemetry"
)

type App struct {
	logger *zap.Logger
}

type ServeConfig struct {
	ConfigPath string
}

type ValidateConfig struct {
	ConfigPath string
}

func New(logger *zap.Logger) *App {
	return &App{
		logger: logger.Named("app"),
	}
}

func (a *App) Serve(ctx context.Context, serveCfg ServeConfig) error {
	loader := config.NewLoader(a.logger)

	cfg, err := loader.Load(ctx, serveCfg.ConfigPath)
	if err != nil {
		return err
	}

	a.logger.Info("configuration loaded",
		zap.String("config", serveCfg.ConfigPath),
		zap.String("token_kind", string(cfg.Auth.Kind)),
	)

	initial := cfg.Auth.Credential()

	var cache *auth.Cache
	if cfg.Auth.CachePath != "" {
		cache, err = auth.OpenCache(cfg.Auth.CachePath)
		if err != nil {
			return err
		}
		defer cache.Close()
		initial = a.adoptCached(cache, initial)
	}

	metrics := telemetry.NewPrometheusMetrics(nil)
	refresher := auth.NewTokenRefresher(cfg.API.BaseURL, auth.RefresherOptions{
		Logger: a.logger,
	})

	store := auth.NewStore(initial, refresher, auth.StoreOptions{
		Margin:  cfg.Auth.RefreshMargin,
		Logger:  a.logger,
		Metrics: metrics,
		OnReplace: func(cred domain.Credential) {
			if cache == nil {
				return
			}
			if err := cache.Save(cred); err != nil {
				a.logger.Warn("failed to persist credential", zap.Error(err))
			}
		},
	})

	client := slack.NewClient(cfg.API.BaseURL, cfg.API.Timeout, a.logger)
	dispatcher := slack.NewDispatcher(client, store, slack.DispatcherOptions{
		Logger:      a.logger,
		Metrics:     metrics,
		MaxAttempts: cfg.API.RateLimitMaxAttempts,
	})

	watcher := config.NewWatcher(loader, serveCfg.ConfigPath, cfg.Auth, a.logger)
	watcher.OnCredential = store.Replace
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	go func() {
		err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
			Addr:          cfg.Observability.ListenAddress,
			EnableMetrics: cfg.Observability.Metrics,
			EnableHealthz: cfg.Observability.Healthz,
		}, a.logger)
		if err != nil {
			a.logger.Error("observability server failed", zap.Error(err))
		}
	}()

	return gateway.New(dispatcher, a.logger).Run(ctx)
}

// adoptCached prefers a cached rotating credential over the configured one
// when the cache holds a later expiry: the configured refresh token was
// consumed by a previous run's exchange.
func (a *App) adoptCached(cache *auth.Cache, configured domain.Credential) domain.Credential {
	cached, found, err := cache.Load()
	if err != nil {
		a.logger.Warn("failed to read credential cache", zap.Error(err))
		return configured
	}
	if !found || !cached.Rotating() || !configured.Rotating() {
		return configured
	}
	if !cached.ExpiresAt.After(configured.ExpiresAt) {
		return configured
	}
	a.logger.Info("resuming cached credential", zap.Time("expires_at", cached.ExpiresAt))
	return cached
}

func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) error {
	loader := config.NewLoader(a.logger)

	loaded, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}

	a.logger.Info("configuration validated",
		zap.String("config", cfg.ConfigPath),
		zap.String("token_kind", string(loaded.Auth.Kind)),
	)
	return nil
}
