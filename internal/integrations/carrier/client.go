package carrier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Client is an authenticated facade over the carrier API for one tenant.
// Every returned error is an *APIError.
type Client interface {
	Get(ctx context.Context, path string, params Params) (*Response, error)
	Post(ctx context.Context, path string, body any) (*Response, error)
	Put(ctx context.Context, path string, body any) (*Response, error)
	Delete(ctx context.Context, path string, body any) (*Response, error)
}

// Response is a successful upstream reply. Exactly one of Empty, Binary or JSON
// body applies.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	Empty       bool
	Binary      bool
}

type ErrorKind string

const (
	KindAuthExpired ErrorKind = "auth_expired"
	KindAuthInvalid ErrorKind = "auth_invalid"
	KindRateLimited ErrorKind = "rate_limited"
	KindUnavailable ErrorKind = "unavailable"
	KindValidation  ErrorKind = "validation"
	KindDecode      ErrorKind = "decode"
	KindUpstream    ErrorKind = "upstream"
)

// KindFromStatus classifies an upstream HTTP status.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthInvalid
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindUnavailable
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindUpstream
	}
}

type APIError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Status  int                 `json:"status"`
	Kind    ErrorKind           `json:"-"`

	cause error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("carrier api: %s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.cause }

// WithCause attaches the underlying error for errors.Is/As.
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// NewAPIError builds an error from an upstream error body. Unparseable bodies
// fall back to "HTTP <status>".
func NewAPIError(status int, body []byte) *APIError {
	var parsed struct {
		Message string          `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	e := &APIError{Status: status, Kind: KindFromStatus(status)}
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		e.Message = parsed.Message
		e.Errors = decodeFieldErrors(parsed.Errors)
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	return e
}

// Поле errors бывает как map[string][]string, так и map[string]string.
func decodeFieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var many map[string][]string
	if json.Unmarshal(raw, &many) == nil {
		return many
	}
	var one map[string]string
	if json.Unmarshal(raw, &one) == nil {
		out := make(map[string][]string, len(one))
		for k, v := range one {
			out[k] = []string{v}
		}
		return out
	}
	return nil
}

// DecodeError is returned when a successful response does not match the
// expected shape.
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeJSON decodes a JSON response into T. Empty and binary responses, and
// bodies that do not fit T, yield an *APIError of kind KindDecode wrapping a
// *DecodeError.
func DecodeJSON[T any](resp *Response) (T, error) {
	var out T
	target := fmt.Sprintf("%T", out)
	if resp == nil || resp.Empty || resp.Binary {
		return out, decodeFailure(target, fmt.Errorf("no json body"))
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, decodeFailure(target, err)
	}
	return out, nil
}

func decodeFailure(target string, err error) *APIError {
	de := &DecodeError{Target: target, Err: err}
	return &APIError{
		Message: de.Error(),
		Status:  http.StatusBadGateway,
		Kind:    KindDecode,
		cause:   de,
	}
}
