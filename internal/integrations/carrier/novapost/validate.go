package novapost

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
)

type ValidationReason string

const (
	ReasonInvalid     ValidationReason = "invalid"
	ReasonRateLimited ValidationReason = "rate_limited"
	ReasonUnavailable ValidationReason = "unavailable"
)

type Validation struct {
	Valid  bool             `json:"valid"`
	Reason ValidationReason `json:"reason,omitempty"`
}

// Validate authenticates apiKey against the upstream with a standalone token
// manager. Only a valid key gets a client in the registry, seeded with the
// fresh token. Rejected keys drop their cached client, while rate limits and
// upstream outages leave it alone. If ctx ends first the registry is untouched
// and ctx.Err() is returned.
func (r *Registry) Validate(ctx context.Context, apiKey string) (Validation, error) {
	c := r.newClient(apiKey)
	if _, err := c.tokens.Refresh(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Validation{}, errors.Wrap(ctxErr, "validate api key")
		}
		reason, drop := classifyAuthFailure(err)
		if drop {
			r.Remove(apiKey)
		}
		slog.Warn("carrier: api key validation failed", "key", MaskKey(apiKey), "reason", reason, "err", err)
		return Validation{Reason: reason}, nil
	}

	r.adopt(apiKey, c)
	return Validation{Valid: true}, nil
}

func classifyAuthFailure(err error) (ValidationReason, bool) {
	var ae *AuthError
	if !errors.As(err, &ae) || ae.Status == 0 {
		return ReasonUnavailable, true
	}
	switch {
	case ae.Status == http.StatusBadRequest, ae.Status == http.StatusUnauthorized, ae.Status == http.StatusForbidden:
		return ReasonInvalid, true
	case ae.Status == http.StatusTooManyRequests:
		return ReasonRateLimited, false
	default:
		return ReasonUnavailable, false
	}
}
