package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags an Error with its position in the gateway's taxonomy.
type ErrorKind string

const (
	// KindValidation: caller-supplied arguments failed the endpoint schema.
	KindValidation ErrorKind = "validation"
	// KindPermission: the held credential kind is insufficient for the endpoint.
	KindPermission ErrorKind = "permission"
	// KindRefresh: the rotating-credential exchange failed; the stale
	// credential remains stored so a later call can retry.
	KindRefresh ErrorKind = "refresh"
	// KindRateLimited: upstream rate limit persisted past the bounded
	// internal backoff.
	KindRateLimited ErrorKind = "rate_limited"
	// KindAmbiguous: a mutating call's outcome is unknown (failure after
	// the request was sent). Never auto-retried.
	KindAmbiguous ErrorKind = "ambiguous"
	// KindUpstream: upstream returned a definite business failure.
	KindUpstream ErrorKind = "upstream"
	// KindNetwork: transport failure before any response was received.
	KindNetwork ErrorKind = "network"
	// KindNotFound: no such tool in the catalog.
	KindNotFound ErrorKind = "not_found"
)

// Error is the gateway's error value. Kind drives caller retry policy,
// Meta carries upstream detail such as the provider's error code.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
	Meta    map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Kind)
		}
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// E constructs an Error.
func E(kind ErrorKind, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

// Wrap attaches a kind and op to err unless it already carries one.
func Wrap(kind ErrorKind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Kind:    existing.Kind,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
			Meta:    existing.Meta,
		}
	}
	return E(kind, op, "", err)
}

// KindFrom extracts the taxonomy kind from err.
func KindFrom(err error) (ErrorKind, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Kind != "" {
		return domainErr.Kind, true
	}
	return "", false
}

// UpstreamCode returns the provider error code attached to err, if any.
func UpstreamCode(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Meta != nil {
		return domainErr.Meta["upstream_code"]
	}
	return ""
}
