package novapost

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Client talks to the Nova Post API on behalf of one API key. A 401 on a
// request is retried exactly once with a fresh token.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	tokens  *TokenManager

	apiRequests atomic.Int64
	retries     atomic.Int64
}

var _ carrier.Client = (*Client)(nil)

func NewClient(baseURL, apiKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   httpc,
		tokens:  NewTokenManager(strings.TrimRight(baseURL, "/"), apiKey, httpc),
	}
}

// Tokens exposes the token manager for key validation and diagnostics.
func (c *Client) Tokens() *TokenManager { return c.tokens }

type Request struct {
	Method string
	Path   string
	Params carrier.Params
	Body   any
}

func (c *Client) Get(ctx context.Context, path string, params carrier.Params) (*carrier.Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Params: params})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*carrier.Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*carrier.Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string, body any) (*carrier.Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Body: body})
}

// Do performs an authenticated request. Errors are always *carrier.APIError.
func (c *Client) Do(ctx context.Context, r Request) (*carrier.Response, error) {
	return c.execute(ctx, r, false)
}

func (c *Client) execute(ctx context.Context, r Request, isRetry bool) (*carrier.Response, error) {
	token, err := c.tokens.EnsureToken(ctx)
	if err != nil {
		return nil, authFailure(err)
	}

	c.apiRequests.Add(1)
	req, err := c.newRequest(ctx, r, token)
	if err != nil {
		return nil, transportFailure(err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, transportFailure(errors.Wrap(err, "do request"))
	}

	if resp.StatusCode == http.StatusUnauthorized && !isRetry {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		slog.Warn("carrier: 401, refreshing token and retrying",
			"method", r.Method, "path", r.Path, "key", MaskKey(c.apiKey))
		c.retries.Add(1)
		c.tokens.Invalidate(token)
		return c.execute(ctx, r, true)
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func (c *Client) newRequest(ctx context.Context, r Request, token string) (*http.Request, error) {
	u := c.baseURL + r.Path
	if q := r.Params.Encode(); q != "" {
		u += "?" + q
	}

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	// Nova Post ждёт токен без префикса Bearer.
	req.Header.Set("Authorization", token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "uk")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func readResponse(resp *http.Response) (*carrier.Response, error) {
	ct := resp.Header.Get("Content-Type")
	out := &carrier.Response{Status: resp.StatusCode, ContentType: ct}

	if resp.StatusCode == http.StatusNoContent {
		out.Empty = true
		return out, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportFailure(errors.Wrap(err, "read response body"))
	}

	if resp.StatusCode/100 != 2 {
		return nil, carrier.NewAPIError(resp.StatusCode, body)
	}

	if strings.Contains(ct, "application/pdf") {
		out.Binary = true
		out.Body = body
		return out, nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		out.Empty = true
		return out, nil
	}
	if !json.Valid(body) {
		e := &carrier.APIError{
			Message: "invalid json in carrier response",
			Status:  http.StatusInternalServerError,
			Kind:    carrier.KindDecode,
		}
		return nil, e.WithCause(&carrier.DecodeError{Target: "response", Err: errors.New("invalid json")})
	}
	out.Body = body
	return out, nil
}

func transportFailure(err error) *carrier.APIError {
	e := &carrier.APIError{
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
		Kind:    carrier.KindUnavailable,
	}
	return e.WithCause(err)
}

func authFailure(err error) *carrier.APIError {
	e := transportFailure(err)
	var ae *AuthError
	if errors.As(err, &ae) {
		e.Kind = ae.Kind()
	}
	return e
}

type Stats struct {
	AuthRequests   int64      `json:"authRequests"`
	APIRequests    int64      `json:"apiRequests"`
	Retries        int64      `json:"retries"`
	LastAuthAt     *time.Time `json:"lastAuthAt"`
	HasValidToken  bool       `json:"hasValidToken"`
	TokenExpiresIn int64      `json:"tokenExpiresIn"` // seconds
}

func (c *Client) Stats() Stats {
	st := c.tokens.state()
	s := Stats{
		AuthRequests:   c.tokens.authRequests.Load(),
		APIRequests:    c.apiRequests.Load(),
		Retries:        c.retries.Load(),
		HasValidToken:  st.valid,
		TokenExpiresIn: int64(st.expiresIn.Round(time.Second) / time.Second),
	}
	if ns := c.tokens.lastAuthAt.Load(); ns != 0 {
		t := time.Unix(0, ns)
		s.LastAuthAt = &t
	}
	return s
}
