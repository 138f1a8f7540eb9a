package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDetectTokenKind(t *testing.T) {
	cases := []struct {
		token string
		kind  TokenKind
		ok    bool
	}{
		{"xoxb-1234-abcd", TokenKindBot, true},
		{"xoxp-1234-abcd", TokenKindUser, true},
		{"xoxe.xoxp-1-abcd", TokenKindRotating, true},
		{"xoxe.xoxb-1-abcd", TokenKindRotating, true},
		{"xoxa-legacy", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		kind, ok := DetectTokenKind(tc.token)
		require.Equal(t, tc.ok, ok, "token %q", tc.token)
		require.Equal(t, tc.kind, kind, "token %q", tc.token)
	}
}

func TestCredentialExpiringWithin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	margin := time.Minute

	nonRotating := Credential{Token: "xoxb-x", Kind: TokenKindBot}
	require.False(t, nonRotating.ExpiringWithin(now, margin))

	bootstrap := Credential{Token: "xoxe.xoxp-x", Kind: TokenKindRotating, RefreshToken: "r"}
	require.True(t, bootstrap.ExpiringWithin(now, margin), "unknown expiry counts as stale")

	fresh := Credential{Kind: TokenKindRotating, ExpiresAt: now.Add(margin + time.Second)}
	require.False(t, fresh.ExpiringWithin(now, margin))

	boundary := Credential{Kind: TokenKindRotating, ExpiresAt: now.Add(margin)}
	require.True(t, boundary.ExpiringWithin(now, margin), "expiry exactly on the margin is stale")

	stale := Credential{Kind: TokenKindRotating, ExpiresAt: now.Add(margin - time.Second)}
	require.True(t, stale.ExpiringWithin(now, margin))
}

func TestCredentialSatisfies(t *testing.T) {
	bot := Credential{Kind: TokenKindBot}
	user := Credential{Kind: TokenKindUser}
	rotating := Credential{Kind: TokenKindRotating}

	require.True(t, bot.Satisfies(TokenKindBot))
	require.True(t, user.Satisfies(TokenKindBot))
	require.True(t, rotating.Satisfies(TokenKindBot))

	require.False(t, bot.Satisfies(TokenKindUser))
	require.True(t, user.Satisfies(TokenKindUser))
	require.True(t, rotating.Satisfies(TokenKindUser))
}
