package dashboard_api

import (
	"net/http"

	"github.com/BearBump/NovaDash/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func (a *DashboardAPI) mountEntities(r chi.Router) {
	r.Route("/shipments", func(r chi.Router) {
		r.Get("/", a.listShipments)
		r.Post("/", a.createShipment)
		r.Post("/calculations", a.calculateCost)
		r.Get("/tracking", a.trackingHistory)
		r.Get("/print/{kind}", a.printDocuments)
		r.Put("/{id}", a.updateShipment)
		r.Delete("/{id}", a.deleteShipment)
	})

	r.Route("/pickups", func(r chi.Router) {
		r.Get("/", a.listPickups)
		r.Post("/", a.createPickup)
		r.Get("/time-intervals", a.pickupTimeIntervals)
		r.Put("/{id}", a.updatePickup)
		r.Delete("/{id}", a.deletePickup)
		r.Put("/{id}/status", a.updatePickupStatus)
		r.Post("/{id}/shipments", a.addPickupShipments)
		r.Delete("/{id}/shipments", a.removePickupShipments)
	})

	r.Route("/registries", func(r chi.Router) {
		r.Get("/", a.listRegistries)
		r.Post("/", a.createRegistry)
		r.Put("/{id}", a.renameRegistry)
		r.Delete("/{id}", a.deleteRegistry)
		r.Post("/{id}/shipments", a.addRegistryShipments)
		r.Delete("/{id}/shipments", a.removeRegistryShipments)
	})

	r.Get("/divisions", a.listDivisions)
	r.Route("/dictionaries", func(r chi.Router) {
		r.Get("/measurements", func(w http.ResponseWriter, r *http.Request) {
			v, err := a.entities.Measurements(r.Context(), apiKey(r))
			respond(w, v, err)
		})
		r.Get("/currencies", func(w http.ResponseWriter, r *http.Request) {
			v, err := a.entities.Currencies(r.Context(), apiKey(r))
			respond(w, v, err)
		})
		r.Get("/cargo-classifiers", func(w http.ResponseWriter, r *http.Request) {
			v, err := a.entities.CargoClassifiers(r.Context(), apiKey(r))
			respond(w, v, err)
		})
		r.Get("/exchange-rates", func(w http.ResponseWriter, r *http.Request) {
			v, err := a.entities.ExchangeRates(r.Context(), apiKey(r))
			respond(w, v, err)
		})
	})
}

func respond[T any](w http.ResponseWriter, v T, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func respondEmpty(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// rawBody passes the client's JSON through without interpreting it.
func rawBody(r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

type shipmentsBody struct {
	Shipments []string `json:"shipments"`
}

func (a *DashboardAPI) listShipments(w http.ResponseWriter, r *http.Request) {
	v, err := a.entities.ListShipments(r.Context(), apiKey(r), models.ListShipmentsParams{
		IDs:     listQuery(r, "ids"),
		Numbers: listQuery(r, "numbers"),
		Page:    intQuery(r, "page"),
		Limit:   intQuery(r, "limit"),
	})
	respond(w, v, err)
}

func (a *DashboardAPI) createShipment(w http.ResponseWriter, r *http.Request) {
	body, err := rawBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.CreateShipment(r.Context(), apiKey(r), body)
	respond(w, v, err)
}

func (a *DashboardAPI) calculateCost(w http.ResponseWriter, r *http.Request) {
	body, err := rawBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.CalculateCost(r.Context(), apiKey(r), body)
	respond(w, v, err)
}

func (a *DashboardAPI) updateShipment(w http.ResponseWriter, r *http.Request) {
	body, err := rawBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.UpdateShipment(r.Context(), apiKey(r), chi.URLParam(r, "id"), body)
	respond(w, v, err)
}

func (a *DashboardAPI) deleteShipment(w http.ResponseWriter, r *http.Request) {
	respondEmpty(w, a.entities.DeleteShipment(r.Context(), apiKey(r), chi.URLParam(r, "id")))
}

func (a *DashboardAPI) trackingHistory(w http.ResponseWriter, r *http.Request) {
	v, err := a.entities.TrackingHistory(r.Context(), apiKey(r), listQuery(r, "numbers"))
	respond(w, v, err)
}

func (a *DashboardAPI) printDocuments(w http.ResponseWriter, r *http.Request) {
	pdf, err := a.entities.PrintDocuments(r.Context(), apiKey(r), chi.URLParam(r, "kind"), listQuery(r, "numbers"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (a *DashboardAPI) listPickups(w http.ResponseWriter, r *http.Request) {
	v, err := a.entities.ListPickups(r.Context(), apiKey(r), models.PageParams{
		Page:  intQuery(r, "page"),
		Limit: intQuery(r, "limit"),
	})
	respond(w, v, err)
}

func (a *DashboardAPI) createPickup(w http.ResponseWriter, r *http.Request) {
	body, err := rawBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.CreatePickup(r.Context(), apiKey(r), body)
	respond(w, v, err)
}

func (a *DashboardAPI) updatePickup(w http.ResponseWriter, r *http.Request) {
	body, err := rawBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.UpdatePickup(r.Context(), apiKey(r), chi.URLParam(r, "id"), body)
	respond(w, v, err)
}

func (a *DashboardAPI) deletePickup(w http.ResponseWriter, r *http.Request) {
	respondEmpty(w, a.entities.DeletePickup(r.Context(), apiKey(r), chi.URLParam(r, "id")))
}

func (a *DashboardAPI) updatePickupStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.UpdatePickupStatus(r.Context(), apiKey(r), chi.URLParam(r, "id"), in.Status)
	respond(w, v, err)
}

func (a *DashboardAPI) addPickupShipments(w http.ResponseWriter, r *http.Request) {
	var in shipmentsBody
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	respondEmpty(w, a.entities.AddShipmentsToPickup(r.Context(), apiKey(r), chi.URLParam(r, "id"), in.Shipments))
}

func (a *DashboardAPI) removePickupShipments(w http.ResponseWriter, r *http.Request) {
	var in shipmentsBody
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	respondEmpty(w, a.entities.RemoveShipmentsFromPickup(r.Context(), apiKey(r), chi.URLParam(r, "id"), in.Shipments))
}

func (a *DashboardAPI) pickupTimeIntervals(w http.ResponseWriter, r *http.Request) {
	v, err := a.entities.PickupTimeIntervals(r.Context(), apiKey(r))
	respond(w, v, err)
}

func (a *DashboardAPI) listRegistries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := a.entities.ListRegistries(r.Context(), apiKey(r), models.ListRegistriesParams{
		Page:          intQuery(r, "page"),
		Limit:         intQuery(r, "limit"),
		CreatedAtFrom: q.Get("createdAtFrom"),
		CreatedAtTo:   q.Get("createdAtTo"),
		IDs:           listQuery(r, "ids"),
		Numbers:       listQuery(r, "numbers"),
		SettlementIDs: listQuery(r, "settlementIds"),
	})
	respond(w, v, err)
}

func (a *DashboardAPI) createRegistry(w http.ResponseWriter, r *http.Request) {
	body, err := rawBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.CreateRegistry(r.Context(), apiKey(r), body)
	respond(w, v, err)
}

func (a *DashboardAPI) renameRegistry(w http.ResponseWriter, r *http.Request) {
	body, err := rawBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.RenameRegistry(r.Context(), apiKey(r), chi.URLParam(r, "id"), body)
	respond(w, v, err)
}

func (a *DashboardAPI) deleteRegistry(w http.ResponseWriter, r *http.Request) {
	respondEmpty(w, a.entities.DeleteRegistry(r.Context(), apiKey(r), chi.URLParam(r, "id")))
}

func (a *DashboardAPI) addRegistryShipments(w http.ResponseWriter, r *http.Request) {
	body, err := rawBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := a.entities.AddShipmentsToRegistry(r.Context(), apiKey(r), chi.URLParam(r, "id"), body)
	respond(w, v, err)
}

func (a *DashboardAPI) removeRegistryShipments(w http.ResponseWriter, r *http.Request) {
	var in shipmentsBody
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	respondEmpty(w, a.entities.RemoveShipmentsFromRegistry(r.Context(), apiKey(r), chi.URLParam(r, "id"), in.Shipments))
}

func (a *DashboardAPI) listDivisions(w http.ResponseWriter, r *http.Request) {
	v, err := a.entities.ListDivisions(r.Context(), apiKey(r), models.ListDivisionsParams{
		Page:               intQuery(r, "page"),
		Limit:              intQuery(r, "limit"),
		CountryCodes:       listQuery(r, "countryCodes"),
		SettlementIDs:      listQuery(r, "settlementIds"),
		DivisionCategories: listQuery(r, "divisionCategories"),
		Latitude:           floatQuery(r, "latitude"),
		Longitude:          floatQuery(r, "longitude"),
	})
	respond(w, v, err)
}
