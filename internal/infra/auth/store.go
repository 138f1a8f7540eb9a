// Package auth owns the credential lifecycle: the in-memory store with
// single-flight refresh, the rotate exchange against the upstream API, and
// the on-disk credential cache.
package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"slackmcp/internal/domain"
)

// Refresher exchanges an expiring credential for a fresh one.
type Refresher interface {
	Refresh(ctx context.Context, old domain.Credential) (domain.Credential, error)
}

// Store holds the current credential and refreshes it before expiry.
// Concurrent callers collapse into a single exchange: a second exchange with
// an already-consumed refresh token would fail upstream and strand the
// connection.
type Store struct {
	refresher Refresher
	margin    time.Duration
	logger    *zap.Logger
	metrics   domain.Metrics
	now       func() time.Time
	onReplace func(domain.Credential)

	current   atomic.Value // domain.Credential
	refreshMu sync.Mutex
}

type StoreOptions struct {
	Margin    time.Duration
	Logger    *zap.Logger
	Metrics   domain.Metrics
	Now       func() time.Time
	OnReplace func(domain.Credential)
}

func NewStore(initial domain.Credential, refresher Refresher, opts StoreOptions) *Store {
	margin := opts.Margin
	if margin <= 0 {
		margin = domain.DefaultRefreshMarginSeconds * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		refresher: refresher,
		margin:    margin,
		logger:    logger.Named("auth"),
		metrics:   opts.Metrics,
		now:       now,
		onReplace: opts.OnReplace,
	}
	s.current.Store(initial)
	if s.metrics != nil {
		s.metrics.SetCredentialExpiry(initial.ExpiresAt)
	}
	return s
}

// Get returns the current credential without checking freshness.
func (s *Store) Get() domain.Credential {
	return s.current.Load().(domain.Credential)
}

// Replace swaps in a new credential, for example after a config reload.
func (s *Store) Replace(cred domain.Credential) {
	s.current.Store(cred)
	if s.metrics != nil {
		s.metrics.SetCredentialExpiry(cred.ExpiresAt)
	}
	if s.onReplace != nil {
		s.onReplace(cred)
	}
}

// EnsureFresh returns a credential that is not within the expiry margin,
// refreshing first if necessary.
func (s *Store) EnsureFresh(ctx context.Context) (domain.Credential, error) {
	cred := s.Get()
	if !cred.ExpiringWithin(s.now(), s.margin) {
		return cred, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another caller may have refreshed while this one waited.
	cred = s.Get()
	if !cred.ExpiringWithin(s.now(), s.margin) {
		return cred, nil
	}
	return s.refreshLocked(ctx, cred)
}

// ForceRefresh exchanges the credential even though the local clock still
// considers it valid. The stale argument is the credential the caller used
// for the rejected request; if the store already moved past it, the current
// credential is returned without a second exchange.
func (s *Store) ForceRefresh(ctx context.Context, stale domain.Credential) (domain.Credential, error) {
	if !stale.Rotating() {
		return domain.Credential{}, domain.E(domain.KindRefresh, "auth.force_refresh", "credential is not refreshable", nil)
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	cred := s.Get()
	if cred.Token != stale.Token {
		return cred, nil
	}
	return s.refreshLocked(ctx, cred)
}

func (s *Store) refreshLocked(ctx context.Context, cred domain.Credential) (domain.Credential, error) {
	start := s.now()
	fresh, err := s.refresher.Refresh(ctx, cred)
	if s.metrics != nil {
		s.metrics.ObserveRefresh(s.now().Sub(start), err)
	}
	if err != nil {
		s.logger.Warn("credential refresh failed",
			zap.Time("expires_at", cred.ExpiresAt),
			zap.Error(err),
		)
		return domain.Credential{}, domain.Wrap(domain.KindRefresh, "auth.refresh", err)
	}

	s.Replace(fresh)
	s.logger.Info("credential refreshed",
		zap.String("kind", string(fresh.Kind)),
		zap.Time("expires_at", fresh.ExpiresAt),
	)
	return fresh, nil
}
