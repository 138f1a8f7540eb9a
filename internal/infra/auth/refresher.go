package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"slackmcp/internal/domain"
)

const rotateEndpoint = "tooling.tokens.rotate"

// TokenRefresher performs the rotate exchange against the upstream API.
type TokenRefresher struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

type RefresherOptions struct {
	Client *http.Client
	Logger *zap.Logger
	Now    func() time.Time
}

func NewTokenRefresher(baseURL string, opts RefresherOptions) *TokenRefresher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultRefreshTimeoutSeconds * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TokenRefresher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger.Named("refresher"),
		now:     now,
	}
}

type rotateResponse struct {
	OK           bool   `json:"ok"`
	Error        string `json:"error"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Exp          int64  `json:"exp"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (r *TokenRefresher) Refresh(ctx context.Context, old domain.Credential) (domain.Credential, error) {
	if old.RefreshToken == "" {
		return domain.Credential{}, errors.New("refresh token is empty")
	}

	form := url.Values{"refresh_token": {old.RefreshToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/"+rotateEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("rotate exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("read rotate response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Credential{}, fmt.Errorf("rotate exchange: unexpected status %d", resp.StatusCode)
	}

	var parsed rotateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Credential{}, fmt.Errorf("decode rotate response: %w", err)
	}
	if !parsed.OK {
		reason := parsed.Error
		if reason == "" {
			reason = "unknown error"
		}
		return domain.Credential{}, fmt.Errorf("rotate exchange rejected: %s", reason)
	}
	if parsed.Token == "" {
		return domain.Credential{}, errors.New("rotate response missing token")
	}

	expiresAt, err := r.expiry(parsed)
	if err != nil {
		return domain.Credential{}, err
	}

	fresh := domain.Credential{
		Token:        parsed.Token,
		Kind:         domain.TokenKindRotating,
		RefreshToken: parsed.RefreshToken,
		ExpiresAt:    expiresAt,
	}
	// Upstream usually rotates the refresh token on every exchange; when it
	// does not, the old one stays valid.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = old.RefreshToken
	}

	r.logger.Debug("token rotated", zap.Time("expires_at", fresh.ExpiresAt))
	return fresh, nil
}

func (r *TokenRefresher) expiry(parsed rotateResponse) (time.Time, error) {
	switch {
	case parsed.Exp > 0:
		return time.Unix(parsed.Exp, 0), nil
	case parsed.ExpiresIn > 0:
		return r.now().Add(time.Duration(parsed.ExpiresIn) * time.Second), nil
	default:
		return time.Time{}, errors.New("rotate response missing expiry")
	}
}
