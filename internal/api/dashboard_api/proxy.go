package dashboard_api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const maxProxyBody = 1 << 20

// proxy forwards /api/carrier/<path> to the carrier on behalf of the user.
func (a *DashboardAPI) proxy(w http.ResponseWriter, r *http.Request) {
	req := novapost.Request{
		Method: r.Method,
		Path:   "/" + chi.URLParam(r, "*"),
		Params: carrier.ParseQuery(r.URL.Query()),
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBody))
		if err != nil {
			writeError(w, errors.Wrap(errBadRequest, "read body"))
			return
		}
		if raw = bytes.TrimSpace(raw); len(raw) > 0 {
			if !json.Valid(raw) {
				writeError(w, errors.Wrap(errBadRequest, "invalid json body"))
				return
			}
			req.Body = json.RawMessage(raw)
		}
	}

	resp, err := a.registry.Client(apiKey(r)).Do(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCarrierResponse(w, resp)
}

func writeCarrierResponse(w http.ResponseWriter, resp *carrier.Response) {
	switch {
	case resp.Empty:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("null"))
	case resp.Binary:
		w.Header().Set("Content-Type", resp.ContentType)
		w.WriteHeader(resp.Status)
		_, _ = w.Write(resp.Body)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		_, _ = w.Write(resp.Body)
	}
}
