package domain

import (
	"strings"
	"time"
)

// TokenKind classifies an upstream credential.
type TokenKind string

const (
	// TokenKindBot is a bot token (xoxb-). Cannot call user-class endpoints.
	TokenKindBot TokenKind = "bot"
	// TokenKindUser is a non-expiring user token (xoxp-).
	TokenKindUser TokenKind = "user"
	// TokenKindRotating is an expiring token (xoxe.*) paired with a refresh token.
	TokenKindRotating TokenKind = "rotating"
)

// DetectTokenKind infers the kind from the token prefix.
func DetectTokenKind(token string) (TokenKind, bool) {
	switch {
	case strings.HasPrefix(token, "xoxe.xoxp-"), strings.HasPrefix(token, "xoxe.xoxb-"):
		return TokenKindRotating, true
	case strings.HasPrefix(token, "xoxb-"):
		return TokenKindBot, true
	case strings.HasPrefix(token, "xoxp-"):
		return TokenKindUser, true
	default:
		return "", false
	}
}

// ParseTokenKind parses a configured kind override.
func ParseTokenKind(value string) (TokenKind, bool) {
	switch TokenKind(strings.ToLower(strings.TrimSpace(value))) {
	case TokenKindBot:
		return TokenKindBot, true
	case TokenKindUser:
		return TokenKindUser, true
	case TokenKindRotating:
		return TokenKindRotating, true
	default:
		return "", false
	}
}

// Credential is the token attached to outbound upstream calls. It is a
// value: refresh never mutates an existing Credential, it installs a
// replacement in the store.
type Credential struct {
	Token        string
	Kind         TokenKind
	RefreshToken string
	// ExpiresAt is zero for bot and user tokens (never expiring). A
	// rotating credential with a zero ExpiresAt has an unknown lifetime
	// and is treated as already stale.
	ExpiresAt time.Time
}

// Rotating reports whether the credential participates in refresh.
func (c Credential) Rotating() bool {
	return c.Kind == TokenKindRotating
}

// ExpiringWithin reports whether the credential must be refreshed before
// use. The margin boundary counts as stale.
func (c Credential) ExpiringWithin(now time.Time, margin time.Duration) bool {
	if c.Kind != TokenKindRotating {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return true
	}
	return !c.ExpiresAt.After(now.Add(margin))
}

// Satisfies reports whether the credential kind meets an endpoint's
// minimum. Rotating tokens are user-class.
func (c Credential) Satisfies(min TokenKind) bool {
	if min != TokenKindUser {
		return true
	}
	return c.Kind == TokenKindUser || c.Kind == TokenKindRotating
}
