package settings

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrEmptyKey            = errors.New("api key is empty")
	ErrNoAPIKey            = errors.New("api key is not configured")
	ErrKeyInvalid          = errors.New("api key rejected by carrier")
	ErrKeyRateLimited      = errors.New("carrier rate limit")
	ErrUpstreamUnavailable = errors.New("carrier unavailable")
	ErrTooManyAttempts     = errors.New("too many key validation attempts")
)

// RetryAfterError is returned when the local validation limit is hit.
type RetryAfterError struct {
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrTooManyAttempts, e.RetryAfter.Round(time.Second))
}

func (e *RetryAfterError) Unwrap() error { return ErrTooManyAttempts }
