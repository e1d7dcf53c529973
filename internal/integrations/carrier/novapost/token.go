package novapost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	authPath = "/clients/authorization"

	// Токен обновляем за 5 минут до истечения.
	refreshBuffer    = 5 * time.Minute
	fallbackTokenTTL = time.Hour
)

// AuthError is a failed exchange of an API key for a token.
type AuthError struct {
	Status int // 0 when the request never got a response
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("carrier auth failed: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("carrier auth failed: %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("carrier auth failed: %d %s", e.Status, http.StatusText(e.Status))
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Kind() carrier.ErrorKind {
	if e.Status == 0 {
		return carrier.KindUnavailable
	}
	if e.Status/100 == 2 {
		return carrier.KindDecode
	}
	return carrier.KindFromStatus(e.Status)
}

// TokenManager owns the short-lived token of one API key. At most one
// authentication request is in flight at any time.
type TokenManager struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	now     func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	flight singleflight.Group

	authRequests atomic.Int64
	lastAuthAt   atomic.Int64
}

func NewTokenManager(baseURL, apiKey string, httpc *http.Client) *TokenManager {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenManager{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   httpc,
		now:     time.Now,
	}
}

// EnsureToken returns a token with more than refreshBuffer of remaining life,
// authenticating if needed. Concurrent callers share one upstream call.
func (m *TokenManager) EnsureToken(ctx context.Context) (string, error) {
	if tok, ok := m.cached(); ok {
		return tok, nil
	}
	return m.await(ctx, false)
}

// Refresh authenticates regardless of the cached token.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	return m.await(ctx, true)
}

func (m *TokenManager) await(ctx context.Context, force bool) (string, error) {
	// Запрос авторизации не должен отменяться вместе с первым из ожидающих.
	detached := context.WithoutCancel(ctx)
	ch := m.flight.DoChan("auth", func() (any, error) {
		if !force {
			if tok, ok := m.cached(); ok {
				return tok, nil
			}
		}
		return m.fetchToken(detached)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Invalidate drops the cached token if it is still the rejected one, so a
// token refreshed by another caller in the meantime survives.
func (m *TokenManager) Invalidate(rejected string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rejected != "" && m.token != rejected {
		return
	}
	m.token = ""
	m.expiresAt = time.Time{}
}

// seed copies the token of src, which authenticated the same key.
func (m *TokenManager) seed(src *TokenManager) {
	src.mu.Lock()
	token, expiresAt := src.token, src.expiresAt
	src.mu.Unlock()

	m.mu.Lock()
	m.token, m.expiresAt = token, expiresAt
	m.mu.Unlock()

	m.authRequests.Add(src.authRequests.Load())
	m.lastAuthAt.Store(src.lastAuthAt.Load())
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != "" && m.expiresAt.Add(-refreshBuffer).After(m.now()) {
		return m.token, true
	}
	return "", false
}

type authResponse struct {
	JWT string `json:"jwt"`
}

func (m *TokenManager) fetchToken(ctx context.Context) (string, error) {
	n := m.authRequests.Add(1)
	m.lastAuthAt.Store(m.now().UnixNano())
	slog.Info("carrier: authenticating", "key", MaskKey(m.apiKey), "auth_no", n)

	u := m.baseURL + authPath + "?" + url.Values{"apiKey": {m.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", &AuthError{Err: errors.Wrap(err, "new auth request")}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return "", &AuthError{Err: errors.Wrap(err, "do auth request")}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &AuthError{Status: resp.StatusCode}
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", &AuthError{Status: resp.StatusCode, Err: errors.Wrap(err, "decode auth response")}
	}
	if ar.JWT == "" {
		return "", &AuthError{Status: resp.StatusCode, Err: errors.New("empty jwt in auth response")}
	}

	now := m.now()
	expiresAt, ok := parseExpiry(ar.JWT)
	if !ok {
		expiresAt = now.Add(fallbackTokenTTL)
		slog.Warn("carrier: could not parse token exp claim, falling back to 1h", "key", MaskKey(m.apiKey))
	}

	m.mu.Lock()
	m.token = ar.JWT
	m.expiresAt = expiresAt
	m.mu.Unlock()

	slog.Info("carrier: authenticated", "key", MaskKey(m.apiKey), "expires_in_min", int(expiresAt.Sub(now).Round(time.Minute).Minutes()))
	return ar.JWT, nil
}

// parseExpiry reads the exp claim without verifying the signature: the token
// is opaque to us, only its lifetime matters.
func parseExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

type tokenState struct {
	valid     bool
	expiresIn time.Duration
}

func (m *TokenManager) state() tokenState {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	st := tokenState{valid: m.token != "" && m.expiresAt.After(now)}
	if !m.expiresAt.IsZero() && m.expiresAt.After(now) {
		st.expiresIn = m.expiresAt.Sub(now)
	}
	return st
}
