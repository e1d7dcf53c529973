package dashboard_api

import (
	"net/http"

	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/services/analytics"
	"github.com/BearBump/NovaDash/internal/services/settings"
	"github.com/pkg/errors"
)

type apiKeyView struct {
	Configured bool   `json:"configured"`
	MaskedKey  string `json:"maskedKey,omitempty"`
}

func (a *DashboardAPI) getAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := a.settings.APIKey(r.Context(), userID(r))
	if errors.Is(err, settings.ErrNoAPIKey) {
		writeJSON(w, http.StatusOK, apiKeyView{})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiKeyView{Configured: true, MaskedKey: novapost.MaskKey(key)})
}

func (a *DashboardAPI) saveAPIKey(w http.ResponseWriter, r *http.Request) {
	var in struct {
		APIKey string `json:"apiKey"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := a.settings.SaveAPIKey(r.Context(), userID(r), in.APIKey); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "API ключ збережено")
}

func (a *DashboardAPI) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := a.settings.DeleteAPIKey(r.Context(), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "API ключ видалено")
}

func (a *DashboardAPI) keyHistory(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit")
	if limit <= 0 {
		limit = 20
	}
	evs, err := a.settings.KeyHistory(r.Context(), userID(r), limit)
	respond(w, evs, err)
}

func (a *DashboardAPI) getAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := a.analytics.Compute(r.Context(), analytics.Query{
		APIKey:   apiKey(r),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	})
	respond(w, v, err)
}

type diagnosticsView struct {
	Key             string          `json:"key"`
	Client          *novapost.Stats `json:"client"`
	RegistryClients int             `json:"registryClients"`
}

// diagnostics не создаёт клиента, если его ещё нет в реестре.
func (a *DashboardAPI) diagnostics(w http.ResponseWriter, r *http.Request) {
	key := apiKey(r)
	out := diagnosticsView{Key: novapost.MaskKey(key), RegistryClients: a.registry.Len()}
	if c, ok := a.registry.Lookup(key); ok {
		st := c.Stats()
		out.Client = &st
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *DashboardAPI) janitorStats(w http.ResponseWriter, r *http.Request) {
	if a.janitor == nil {
		writeMessage(w, http.StatusServiceUnavailable, "janitor not wired")
		return
	}
	writeJSON(w, http.StatusOK, a.janitor.Stats())
}

func (a *DashboardAPI) janitorTrigger(w http.ResponseWriter, r *http.Request) {
	if a.janitor == nil {
		writeMessage(w, http.StatusServiceUnavailable, "janitor not wired")
		return
	}
	a.janitor.Trigger()
	writeJSON(w, http.StatusOK, map[string]bool{"triggered": true})
}
