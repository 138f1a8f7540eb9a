package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"slackmcp/internal/domain"
)

// Loader reads and validates the daemon configuration file.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("auth.refreshMarginSeconds", domain.DefaultRefreshMarginSeconds)
	v.SetDefault("api.baseURL", domain.DefaultAPIBaseURL)
	v.SetDefault("api.timeoutSeconds", domain.DefaultAPITimeoutSeconds)
	v.SetDefault("api.rateLimitMaxAttempts", domain.DefaultRateLimitMaxAttempts)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListen)
	v.SetDefault("observability.metrics", domain.DefaultObservabilityMetrics)
	v.SetDefault("observability.healthz", domain.DefaultObservabilityHealthz)
}

type rawConfig struct {
	Auth          rawAuthConfig          `mapstructure:"auth"`
	API           rawAPIConfig           `mapstructure:"api"`
	Observability rawObservabilityConfig `mapstructure:"observability"`
}

type rawAuthConfig struct {
	Token                string `mapstructure:"token"`
	RefreshToken         string `mapstructure:"refreshToken"`
	Kind                 string `mapstructure:"kind"`
	RefreshMarginSeconds int    `mapstructure:"refreshMarginSeconds"`
	CachePath            string `mapstructure:"cachePath"`
}

type rawAPIConfig struct {
	BaseURL              string `mapstructure:"baseURL"`
	TimeoutSeconds       int    `mapstructure:"timeoutSeconds"`
	RateLimitMaxAttempts int    `mapstructure:"rateLimitMaxAttempts"`
}

type rawObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	Metrics       bool   `mapstructure:"metrics"`
	Healthz       bool   `mapstructure:"healthz"`
}

// Load reads the file at path, expands ${ENV} references, and returns a
// validated configuration.
func (l *Loader) Load(ctx context.Context, path string) (domain.Config, error) {
	if path == "" {
		return domain.Config{}, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing, err := expandConfigEnv(data)
	if err != nil {
		return domain.Config{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config",
			zap.String("path", path),
			zap.Strings("missing", missing),
		)
	}

	v := newConfigViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return domain.Config{}, fmt.Errorf("parse config: %w", err)
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	cfg, errs := normalize(raw)
	if len(errs) > 0 {
		return domain.Config{}, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}

func normalize(raw rawConfig) (domain.Config, []string) {
	var errs []string

	auth, authErrs := normalizeAuth(raw.Auth)
	errs = append(errs, authErrs...)

	api, apiErrs := normalizeAPI(raw.API)
	errs = append(errs, apiErrs...)

	obs := domain.ObservabilityConfig{
		ListenAddress: strings.TrimSpace(raw.Observability.ListenAddress),
		Metrics:       raw.Observability.Metrics,
		Healthz:       raw.Observability.Healthz,
	}
	if obs.ListenAddress == "" {
		obs.ListenAddress = domain.DefaultObservabilityListen
	}

	return domain.Config{
		Auth:          auth,
		API:           api,
		Observability: obs,
	}, errs
}

func normalizeAuth(raw rawAuthConfig) (domain.AuthConfig, []string) {
	var errs []string

	token := strings.TrimSpace(raw.Token)
	if token == "" {
		errs = append(errs, "auth.token is required")
	}

	var kind domain.TokenKind
	if trimmed := strings.TrimSpace(raw.Kind); trimmed != "" {
		parsed, ok := domain.ParseTokenKind(trimmed)
		if !ok {
			errs = append(errs, "auth.kind must be bot, user, or rotating")
		}
		kind = parsed
	} else if token != "" {
		detected, ok := domain.DetectTokenKind(token)
		if !ok {
			errs = append(errs, "auth.kind is required: token prefix is not recognized")
		}
		kind = detected
	}

	refreshToken := strings.TrimSpace(raw.RefreshToken)
	if kind == domain.TokenKindRotating && refreshToken == "" {
		errs = append(errs, "auth.refreshToken is required for a rotating token")
	}
	if kind != domain.TokenKindRotating && refreshToken != "" {
		errs = append(errs, "auth.refreshToken is only valid for a rotating token")
	}

	if raw.RefreshMarginSeconds <= 0 {
		errs = append(errs, "auth.refreshMarginSeconds must be > 0")
	}

	return domain.AuthConfig{
		Token:         token,
		RefreshToken:  refreshToken,
		Kind:          kind,
		RefreshMargin: time.Duration(raw.RefreshMarginSeconds) * time.Second,
		CachePath:     strings.TrimSpace(raw.CachePath),
	}, errs
}

func normalizeAPI(raw rawAPIConfig) (domain.APIConfig, []string) {
	var errs []string

	baseURL := strings.TrimSpace(raw.BaseURL)
	if baseURL == "" {
		baseURL = domain.DefaultAPIBaseURL
	} else if parsed, err := url.ParseRequestURI(baseURL); err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		errs = append(errs, "api.baseURL must be a valid http(s) URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if raw.TimeoutSeconds <= 0 {
		errs = append(errs, "api.timeoutSeconds must be > 0")
	}
	if raw.RateLimitMaxAttempts < 1 {
		errs = append(errs, "api.rateLimitMaxAttempts must be >= 1")
	}

	return domain.APIConfig{
		BaseURL:              baseURL,
		Timeout:              time.Duration(raw.TimeoutSeconds) * time.Second,
		RateLimitMaxAttempts: raw.RateLimitMaxAttempts,
	}, errs
}
