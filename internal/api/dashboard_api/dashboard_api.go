package dashboard_api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/services/analytics"
	"github.com/BearBump/NovaDash/internal/services/entities"
	"github.com/BearBump/NovaDash/internal/services/janitor"
	"github.com/BearBump/NovaDash/internal/services/settings"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const UserHeader = "X-User-ID"

type ctxKey int

const apiKeyCtx ctxKey = iota

type DashboardAPI struct {
	registry  *novapost.Registry
	entities  *entities.Service
	analytics *analytics.Service
	settings  *settings.Service
	janitor   *janitor.Janitor

	swaggerPath string
}

type Deps struct {
	Registry    *novapost.Registry
	Entities    *entities.Service
	Analytics   *analytics.Service
	Settings    *settings.Service
	Janitor     *janitor.Janitor
	SwaggerPath string
}

func New(d Deps) *DashboardAPI {
	return &DashboardAPI{
		registry:    d.Registry,
		entities:    d.Entities,
		analytics:   d.Analytics,
		settings:    d.Settings,
		janitor:     d.Janitor,
		swaggerPath: d.SwaggerPath,
	}
}

func (a *DashboardAPI) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	a.mountDocs(r)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/settings/api-key", func(r chi.Router) {
			r.Get("/", a.getAPIKey)
			r.Put("/", a.saveAPIKey)
			r.Delete("/", a.deleteAPIKey)
			r.Get("/history", a.keyHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.withAPIKey)

			r.HandleFunc("/carrier/*", a.proxy)
			r.Get("/analytics", a.getAnalytics)
			r.Get("/diagnostics", a.diagnostics)
			a.mountEntities(r)
		})
	})

	r.Route("/maintenance", func(r chi.Router) {
		r.Get("/stats", a.janitorStats)
		r.Post("/trigger", a.janitorTrigger)
	})
	return r
}

func (a *DashboardAPI) mountDocs(r chi.Router) {
	if a.swaggerPath == "" {
		return
	}
	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, a.swaggerPath)
	})

	swaggerURL := "/swagger.json"
	if fi, err := os.Stat(a.swaggerPath); err == nil {
		swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
	}
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get(UserHeader)) == "" {
			writeMessage(w, http.StatusUnauthorized, "Не авторизовано")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserHeader))
}

// withAPIKey кладёт в контекст API ключ Nova Post текущего пользователя.
func (a *DashboardAPI) withAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := a.settings.APIKey(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), apiKeyCtx, key)))
	})
}

func apiKey(r *http.Request) string {
	k, _ := r.Context().Value(apiKeyCtx).(string)
	return k
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("dashboard: write response", "err", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeError maps domain errors to HTTP statuses. Carrier errors keep the
// upstream status and field errors.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *carrier.APIError
	var retry *settings.RetryAfterError
	switch {
	case errors.As(err, &apiErr):
		writeJSON(w, apiErr.Status, errorBody{Message: apiErr.Message, Errors: apiErr.Errors})
	case errors.Is(err, settings.ErrNoAPIKey):
		writeMessage(w, http.StatusBadRequest, "API ключ не налаштовано. Перейдіть у налаштування.")
	case errors.Is(err, settings.ErrEmptyKey):
		writeMessage(w, http.StatusBadRequest, "API ключ не може бути порожнім")
	case errors.Is(err, settings.ErrKeyInvalid):
		writeMessage(w, http.StatusBadRequest, "Невірний API ключ")
	case errors.As(err, &retry):
		w.Header().Set("Retry-After", strconv.Itoa(int(retry.RetryAfter.Round(time.Second)/time.Second)))
		writeMessage(w, http.StatusTooManyRequests, "Забагато спроб. Спробуйте пізніше.")
	case errors.Is(err, settings.ErrKeyRateLimited):
		writeMessage(w, http.StatusTooManyRequests, "Nova Post обмежує кількість запитів. Спробуйте пізніше.")
	case errors.Is(err, settings.ErrUpstreamUnavailable):
		writeMessage(w, http.StatusServiceUnavailable, "Nova Post API тимчасово недоступний")
	case errors.Is(err, analytics.ErrInvalidQuery), errors.Is(err, entities.ErrUnknownPrintKind), errors.Is(err, errBadRequest):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("dashboard: unhandled error", "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(errBadRequest, "invalid json body")
	}
	return nil
}

func intQuery(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// listQuery accepts both name[]=a&name[]=b and name=a,b.
func listQuery(r *http.Request, name string) []string {
	q := r.URL.Query()
	if vs := q[name+"[]"]; len(vs) > 0 {
		return vs
	}
	var out []string
	for _, v := range q[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatQuery(r *http.Request, name string) *float64 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
