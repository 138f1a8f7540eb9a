package slack

import (
	"fmt"
	"net/http"
	"strconv"

	"slackmcp/internal/domain"
)

const errTokenExpired = "token_expired"

// Upstream codes that mean the token lacks authority for the call, as
// opposed to the call itself being wrong.
var permissionErrors = map[string]struct{}{
	"missing_scope":          {},
	"not_allowed_token_type": {},
	"not_authed":             {},
	"invalid_auth":           {},
	"account_inactive":       {},
	"token_revoked":          {},
}

func mapUpstreamError(desc domain.Descriptor, resp *apiResponse) *domain.Error {
	code := resp.ErrorCode
	if code == "" {
		err := domain.E(domain.KindUpstream, "dispatch.call",
			fmt.Sprintf("%s: upstream status %d", desc.Name, resp.StatusCode), nil)
		err.Meta = map[string]string{"status": strconv.Itoa(resp.StatusCode)}
		return err
	}

	kind := domain.KindUpstream
	if _, permission := permissionErrors[code]; permission {
		kind = domain.KindPermission
	}
	if code == "ratelimited" || resp.StatusCode == http.StatusTooManyRequests {
		kind = domain.KindRateLimited
	}

	err := domain.E(kind, "dispatch.call", fmt.Sprintf("%s: %s", desc.Name, code), nil)
	err.Meta = map[string]string{"upstream_code": code}
	return err
}
