package fake

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BearBump/NovaDash/internal/models"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func authenticate(t *testing.T, srv *httptest.Server, key string) string {
	t.Helper()
	resp, err := http.Get(srv.URL + "/clients/authorization?apiKey=" + key)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		JWT string `json:"jwt"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.JWT)
	return body.JWT
}

func TestServer_AuthAndPaginate(t *testing.T) {
	f := New(Seed(25, 5, time.Now()), "good-key-1234")
	srv := httptest.NewServer(f.Handler())
	defer srv.Close()

	tok := authenticate(t, srv, "good-key-1234")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/shipments?page=3&limit=10", nil)
	req.Header.Set("Authorization", tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page models.ShipmentPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Equal(t, 3, page.LastPage)
	require.Equal(t, 25, page.Total)
	require.Len(t, page.Items, 5)
	require.Equal(t, int64(1), f.AuthCalls())
}

func TestServer_RejectsUnknownKeyAndMissingToken(t *testing.T) {
	f := New(nil, "good-key-1234")
	srv := httptest.NewServer(f.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/clients/authorization?apiKey=bad")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/shipments")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_FiltersByNumbers(t *testing.T) {
	f := New(Seed(5, 1, time.Now())).AcceptAnyKey()
	srv := httptest.NewServer(f.Handler())
	defer srv.Close()
	tok := authenticate(t, srv, "whatever")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/shipments?numbers[]=2040s-2&numbers[]=2040s-4", nil)
	req.Header.Set("Authorization", tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var page models.ShipmentPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Items, 2)
	require.Equal(t, "s-2", page.Items[0].ID)
}
