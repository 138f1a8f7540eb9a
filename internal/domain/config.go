package domain

import "time"

// Config is the normalized daemon configuration.
type Config struct {
	Auth          AuthConfig
	API           APIConfig
	Observability ObservabilityConfig
}

// AuthConfig carries the startup credential and refresh policy.
type AuthConfig struct {
	Token        string
	RefreshToken string
	// Kind overrides prefix detection when set.
	Kind          TokenKind
	RefreshMargin time.Duration
	// CachePath is the bbolt file persisting rotated credentials across
	// restarts. Empty disables the cache.
	CachePath string
}

// APIConfig tunes the upstream HTTP client.
type APIConfig struct {
	BaseURL              string
	Timeout              time.Duration
	RateLimitMaxAttempts int
}

// ObservabilityConfig configures the metrics/health HTTP listener.
type ObservabilityConfig struct {
	ListenAddress string
	Metrics       bool
	Healthz       bool
}

// Credential builds the startup credential from the auth section.
// Validation has already guaranteed token presence and a usable kind.
func (c AuthConfig) Credential() Credential {
	kind := c.Kind
	if kind == "" {
		kind, _ = DetectTokenKind(c.Token)
	}
	cred := Credential{Token: c.Token, Kind: kind}
	if kind == TokenKindRotating {
		cred.RefreshToken = c.RefreshToken
	}
	return cred
}
