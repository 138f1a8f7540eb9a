package slack

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slackmcp/internal/domain"
)

// CredentialSource is the slice of the credential store the dispatcher needs.
type CredentialSource interface {
	Get() domain.Credential
	EnsureFresh(ctx context.Context) (domain.Credential, error)
	ForceRefresh(ctx context.Context, stale domain.Credential) (domain.Credential, error)
}

// Dispatcher executes catalog-described calls end to end: validate, ensure a
// fresh credential, call upstream, classify the outcome.
type Dispatcher struct {
	client      *Client
	creds       CredentialSource
	logger      *zap.Logger
	metrics     domain.Metrics
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
}

type DispatcherOptions struct {
	Logger      *zap.Logger
	Metrics     domain.Metrics
	MaxAttempts int
	// Sleep overrides the rate-limit suspension, for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(client *Client, creds CredentialSource, opts DispatcherOptions) *Dispatcher {
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = domain.DefaultRateLimitMaxAttempts
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Dispatcher{
		client:      client,
		creds:       creds,
		logger:      logger.Named("dispatch"),
		metrics:     opts.Metrics,
		maxAttempts: maxAttempts,
		sleep:       sleep,
	}
}

func (d *Dispatcher) Execute(ctx context.Context, desc domain.Descriptor, args map[string]any) (domain.Result, error) {
	start := time.Now()
	result, err := d.execute(ctx, desc, args)
	if d.metrics != nil {
		d.metrics.ObserveDispatch(desc.Name, time.Since(start), err)
	}
	return result, err
}

func (d *Dispatcher) execute(ctx context.Context, desc domain.Descriptor, args map[string]any) (domain.Result, error) {
	params, err := validateArgs(desc, args)
	if err != nil {
		return domain.Result{}, err
	}

	// The permission gate runs before any I/O: an insufficient token kind is
	// a local fact, not something to learn from a wasted round trip.
	if !d.creds.Get().Satisfies(desc.MinKind) {
		return domain.Result{}, domain.E(domain.KindPermission, "dispatch.permission",
			desc.Name+" requires a user-class token", nil)
	}

	cred, err := d.creds.EnsureFresh(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	requestID := uuid.NewString()
	logger := d.logger.With(zap.String("request_id", requestID), zap.String("tool", desc.Name))

	rateLimitAttempts := 0
	forcedRefresh := false
	for {
		resp, callErr := d.client.Call(ctx, desc.HTTPMethod, desc.Endpoint, cred.Token, params)
		if callErr != nil {
			return domain.Result{}, d.transportError(desc, logger, callErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			rateLimitAttempts++
			if rateLimitAttempts >= d.maxAttempts {
				rateErr := domain.E(domain.KindRateLimited, "dispatch.call",
					desc.Name+": rate limited after bounded retries", nil)
				rateErr.Meta = map[string]string{"attempts": strconv.Itoa(rateLimitAttempts)}
				return domain.Result{}, rateErr
			}
			logger.Warn("rate limited; backing off",
				zap.Duration("retry_after", resp.RetryAfter),
				zap.Int("attempt", rateLimitAttempts),
			)
			if d.metrics != nil {
				d.metrics.ObserveRateLimitWait(desc.Name, resp.RetryAfter)
			}
			if err := d.sleep(ctx, resp.RetryAfter); err != nil {
				return domain.Result{}, err
			}
			continue
		}

		if !resp.OK {
			// A rotating token can expire server-side before the local margin
			// says so (clock skew, forced invalidation). One forced refresh,
			// one reissue.
			if resp.ErrorCode == errTokenExpired && cred.Rotating() && !forcedRefresh {
				logger.Info("upstream reports token expired; forcing refresh")
				fresh, refreshErr := d.creds.ForceRefresh(ctx, cred)
				if refreshErr != nil {
					return domain.Result{}, refreshErr
				}
				cred = fresh
				forcedRefresh = true
				continue
			}
			return domain.Result{}, mapUpstreamError(desc, resp)
		}

		return normalizeResult(desc, resp), nil
	}
}

func (d *Dispatcher) transportError(desc domain.Descriptor, logger *zap.Logger, cause error) error {
	if desc.Mutating && !requestNeverSent(cause) {
		logger.Warn("mutating call outcome unknown", zap.Error(cause))
		return domain.E(domain.KindAmbiguous, "dispatch.call",
			desc.Name+": outcome unknown, request may have been applied", cause)
	}
	logger.Warn("transport failure", zap.Error(cause))
	return domain.E(domain.KindNetwork, "dispatch.call", "", cause)
}

// requestNeverSent reports whether the transport failed before the request
// left the client. A dial failure means nothing reached upstream, so even a
// mutating call has a known outcome and is safe to retry.
func requestNeverSent(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func normalizeResult(desc domain.Descriptor, resp *apiResponse) domain.Result {
	result := domain.Result{Fields: map[string]any{}}
	if len(desc.Result.Fields) > 0 {
		for _, name := range desc.Result.Fields {
			if value, ok := resp.Body[name]; ok {
				result.Fields[name] = value
			}
		}
	} else {
		for name, value := range resp.Body {
			if name == "ok" || name == "response_metadata" {
				continue
			}
			result.Fields[name] = value
		}
	}
	if desc.Result.CursorField != "" {
		result.NextCursor = cursorAt(resp.Body, desc.Result.CursorField)
	}
	return result
}

// cursorAt walks a dotted path through nested objects and returns the string
// at the leaf, if any.
func cursorAt(body map[string]any, path string) string {
	current := body
	parts := strings.Split(path, ".")
	for i, part := range parts {
		value, ok := current[part]
		if !ok {
			return ""
		}
		if i == len(parts)-1 {
			cursor, _ := value.(string)
			return cursor
		}
		next, ok := value.(map[string]any)
		if !ok {
			return ""
		}
		current = next
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
