package domain

import "time"

// Metrics receives observations from the dispatcher and the credential
// store. A nil Metrics is always permitted.
type Metrics interface {
	// ObserveDispatch records one completed tool dispatch.
	ObserveDispatch(tool string, duration time.Duration, err error)
	// ObserveRefresh records one credential refresh exchange.
	ObserveRefresh(duration time.Duration, err error)
	// ObserveRateLimitWait records one rate-limit backoff suspension.
	ObserveRateLimitWait(tool string, wait time.Duration)
	// SetCredentialExpiry publishes the current credential's expiry
	// instant (zero for non-rotating credentials).
	SetCredentialExpiry(expiresAt time.Time)
}
