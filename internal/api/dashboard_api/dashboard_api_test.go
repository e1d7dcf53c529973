package dashboard_api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/NovaDash/internal/integrations/carrier/fake"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/models"
	"github.com/BearBump/NovaDash/internal/services/analytics"
	"github.com/BearBump/NovaDash/internal/services/entities"
	"github.com/BearBump/NovaDash/internal/services/janitor"
	"github.com/BearBump/NovaDash/internal/services/settings"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
)

const (
	validKey = "dashboard-key-0123456789"
	user     = "user-1"
)

// memRepo хранит ключи в памяти вместо Postgres.
type memRepo struct {
	mu   sync.Mutex
	keys map[string]string
}

func (r *memRepo) SetAPIKey(_ context.Context, userID, apiKey string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.keys[userID]
	r.keys[userID] = apiKey
	return prev, nil
}

func (r *memRepo) GetAPIKey(_ context.Context, userID string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[userID]
	return k, ok, nil
}

func (r *memRepo) DeleteAPIKey(_ context.Context, userID string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[userID]
	delete(r.keys, userID)
	return k, ok, nil
}

func (r *memRepo) ListKeyEvents(context.Context, string, int) ([]*models.APIKeyEvent, error) {
	return []*models.APIKeyEvent{}, nil
}

type APISuite struct {
	suite.Suite

	upstream *fake.Server
	carrier  *httptest.Server
	srv      *httptest.Server
	registry *novapost.Registry
	repo     *memRepo
}

func (s *APISuite) SetupTest() {
	now := time.Now()
	shipments := fake.Seed(12, 3, now)
	s.upstream = fake.New(shipments, validKey)
	s.carrier = httptest.NewServer(s.upstream.Handler())

	s.registry = novapost.NewRegistry(s.carrier.URL, s.carrier.Client())
	ents := entities.New(s.registry, nil)
	an := analytics.New(ents, 4, nil)
	s.repo = &memRepo{keys: map[string]string{}}
	st := settings.New(settings.Deps{
		Repo:      s.repo,
		Validator: s.registry,
		Limiter:   settings.NewLocalLimiter(100),
		Evictors:  []settings.Evictor{s.registry.RemoveFingerprint, ents.InvalidateFingerprint, an.InvalidateFingerprint},
	})
	jn := janitor.New(s.registry, map[string]janitor.Sweeper{"carrier_clients": janitor.SweepFunc(s.registry.Sweep)})

	api := New(Deps{Registry: s.registry, Entities: ents, Analytics: an, Settings: st, Janitor: jn})
	s.srv = httptest.NewServer(api.Routes())
}

func (s *APISuite) TearDownTest() {
	s.srv.Close()
	s.carrier.Close()
}

func (s *APISuite) do(method, path, body string) (*http.Response, []byte) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rd)
	s.Require().NoError(err)
	req.Header.Set(UserHeader, user)

	resp, err := s.srv.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, b
}

func (s *APISuite) message(b []byte) string {
	var e errorBody
	s.Require().NoError(json.Unmarshal(b, &e))
	return e.Message
}

func (s *APISuite) configureKey() {
	resp, b := s.do(http.MethodPut, "/api/settings/api-key", `{"apiKey":"`+validKey+`"}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(b))
}

func (s *APISuite) TestHealthzAndMetrics() {
	resp, err := http.Get(s.srv.URL + "/healthz")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, err = http.Get(s.srv.URL + "/metrics")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *APISuite) TestRequiresUser() {
	resp, err := http.Get(s.srv.URL + "/api/analytics")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *APISuite) TestMissingAPIKey() {
	resp, b := s.do(http.MethodGet, "/api/carrier/shipments", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("API ключ не налаштовано. Перейдіть у налаштування.", s.message(b))
}

func (s *APISuite) TestSaveAPIKey_Validation() {
	resp, _ := s.do(http.MethodPut, "/api/settings/api-key", `{"apiKey":"   "}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, b := s.do(http.MethodPut, "/api/settings/api-key", `{"apiKey":"wrong-key-000000"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Невірний API ключ", s.message(b))
	s.Empty(s.repo.keys)

	s.upstream.FailAuth(http.StatusTooManyRequests)
	resp, _ = s.do(http.MethodPut, "/api/settings/api-key", `{"apiKey":"`+validKey+`"}`)
	s.Equal(http.StatusTooManyRequests, resp.StatusCode)

	s.upstream.FailAuth(http.StatusBadGateway)
	resp, _ = s.do(http.MethodPut, "/api/settings/api-key", `{"apiKey":"`+validKey+`"}`)
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	s.upstream.FailAuth(0)
	s.configureKey()

	resp, b = s.do(http.MethodGet, "/api/settings/api-key", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var view apiKeyView
	s.Require().NoError(json.Unmarshal(b, &view))
	s.True(view.Configured)
	s.Equal(novapost.MaskKey(validKey), view.MaskedKey)
}

func (s *APISuite) TestProxy() {
	s.configureKey()

	resp, b := s.do(http.MethodGet, "/api/carrier/shipments?limit=5&numbers[]=2040s-1&numbers[]=2040s-2", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(b))
	var page models.ShipmentPage
	s.Require().NoError(json.Unmarshal(b, &page))
	s.Len(page.Items, 2)

	resp, b = s.do(http.MethodDelete, "/api/carrier/shipments/1", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("null", string(b))

	resp, b = s.do(http.MethodGet, "/api/carrier/shipments/print?numbers[]=2040s-1", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get("Content-Type"))
	s.True(bytes.HasPrefix(b, []byte("%PDF")))

	resp, b = s.do(http.MethodGet, "/api/carrier/nope", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("Not found", s.message(b))

	resp, _ = s.do(http.MethodPost, "/api/carrier/shipments", "{broken")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestAnalyticsAndShipments() {
	s.configureKey()

	resp, b := s.do(http.MethodGet, "/api/analytics", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(b))
	var a models.Analytics
	s.Require().NoError(json.Unmarshal(b, &a))
	s.Equal(12, a.TotalShipments)
	s.Equal(12, a.LoadedShipments)

	resp, _ = s.do(http.MethodGet, "/api/analytics?dateFrom=01.01.2024", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, b = s.do(http.MethodGet, "/api/shipments?limit=5&page=2", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var page models.ShipmentPage
	s.Require().NoError(json.Unmarshal(b, &page))
	s.Equal(2, page.CurrentPage)
	s.Len(page.Items, 5)
}

func (s *APISuite) TestDiagnostics() {
	s.configureKey()

	resp, b := s.do(http.MethodGet, "/api/diagnostics", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var d diagnosticsView
	s.Require().NoError(json.Unmarshal(b, &d))
	s.Equal(novapost.MaskKey(validKey), d.Key)
	s.Require().NotNil(d.Client)
	s.True(d.Client.HasValidToken)
	s.EqualValues(1, d.Client.AuthRequests)
	s.Equal(1, d.RegistryClients)
}

func (s *APISuite) TestDeleteAPIKeyDropsClient() {
	s.configureKey()
	s.Equal(1, s.registry.Len())

	resp, _ := s.do(http.MethodDelete, "/api/settings/api-key", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Zero(s.registry.Len())

	resp, _ = s.do(http.MethodDelete, "/api/settings/api-key", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/api/analytics", "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestMaintenance() {
	resp, _ := s.do(http.MethodPost, "/maintenance/trigger", "")
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, b := s.do(http.MethodGet, "/maintenance/stats", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(b), "startedAt")
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}
