package fake

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/NovaDash/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// Server — фейковый Nova Post API: авторизация по ключу и постраничный список
// отправлений. Нужен для тестов и режима carrier.mode=fake.
type Server struct {
	TokenTTL time.Duration
	// Delay is applied to every /shipments page request.
	Delay time.Duration

	mu          sync.Mutex
	keys        map[string]bool
	shipments   []models.Shipment
	failPages   map[int]int
	authStatus  int
	reject401   int
	signingKey  []byte
	tokenSerial int

	authCalls   atomic.Int64
	pageCalls   atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func New(shipments []models.Shipment, validKeys ...string) *Server {
	s := &Server{
		TokenTTL:   time.Hour,
		keys:       make(map[string]bool),
		shipments:  shipments,
		failPages:  make(map[int]int),
		signingKey: []byte("fake-novapost"),
	}
	for _, k := range validKeys {
		s.keys[k] = true
	}
	return s
}

// AcceptAnyKey makes the auth endpoint accept every non-empty key.
func (s *Server) AcceptAnyKey() *Server {
	s.mu.Lock()
	s.keys = nil
	s.mu.Unlock()
	return s
}

// FailPage makes the given page answer with status.
func (s *Server) FailPage(page, status int) {
	s.mu.Lock()
	s.failPages[page] = status
	s.mu.Unlock()
}

// FailAuth makes the auth endpoint answer with status; 0 restores normal behavior.
func (s *Server) FailAuth(status int) {
	s.mu.Lock()
	s.authStatus = status
	s.mu.Unlock()
}

// RejectTokens makes the next n API calls answer 401 regardless of the token.
func (s *Server) RejectTokens(n int) {
	s.mu.Lock()
	s.reject401 = n
	s.mu.Unlock()
}

func (s *Server) AuthCalls() int64   { return s.authCalls.Load() }
func (s *Server) PageCalls() int64   { return s.pageCalls.Load() }
func (s *Server) MaxInFlight() int64 { return s.maxInFlight.Load() }

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/clients/authorization", s.handleAuth)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/shipments", s.handleShipments)
		r.Get("/shipments/print", s.handlePrint)
		r.Delete("/shipments/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/exchange-rates", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []models.ExchangeRate{{
				CurrencyCodeA: "EUR", CurrencyCodeB: "UAH", RateBuy: 44.1, RateSell: 44.9,
				Date: time.Now().UTC().Format(time.DateOnly),
			}})
		})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	})
	return r
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	s.authCalls.Add(1)
	key := r.URL.Query().Get("apiKey")

	s.mu.Lock()
	status := s.authStatus
	known := key != "" && (s.keys == nil || s.keys[key])
	s.tokenSerial++
	serial := s.tokenSerial
	s.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}
	if !known {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid API key"})
		return
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": key,
		"jti": strconv.Itoa(serial),
		"exp": time.Now().Add(s.TokenTTL).Unix(),
	}).SignedString(s.signingKey)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jwt": tok})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		reject := s.reject401 > 0
		if reject {
			s.reject401--
		}
		s.mu.Unlock()

		if reject || !s.validToken(r.Header.Get("Authorization")) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validToken(raw string) bool {
	if raw == "" {
		return false
	}
	_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil
}

func (s *Server) handleShipments(w http.ResponseWriter, r *http.Request) {
	s.pageCalls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxInFlight.Load()
		if n <= m || s.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}

	q := r.URL.Query()
	page := atoiOr(q.Get("page"), 1)
	limit := atoiOr(q.Get("limit"), 15)

	s.mu.Lock()
	failStatus := s.failPages[page]
	items := filterShipments(s.shipments, q["ids[]"], q["numbers[]"])
	s.mu.Unlock()

	if failStatus != 0 {
		writeJSON(w, failStatus, map[string]string{"message": fmt.Sprintf("page %d failed", page)})
		return
	}

	writeJSON(w, http.StatusOK, paginate(items, page, limit))
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("%PDF-1.4\n% " + r.URL.Query().Get("type") + "\n%%EOF\n"))
}

func filterShipments(all []models.Shipment, ids, numbers []string) []models.Shipment {
	if len(ids) == 0 && len(numbers) == 0 {
		return all
	}
	want := make(map[string]bool, len(ids)+len(numbers))
	for _, v := range ids {
		want["id:"+v] = true
	}
	for _, v := range numbers {
		want["no:"+v] = true
	}
	var out []models.Shipment
	for _, sh := range all {
		if want["id:"+sh.ID] || want["no:"+sh.Number] {
			out = append(out, sh)
		}
	}
	return out
}

func paginate(all []models.Shipment, page, limit int) models.ShipmentPage {
	lastPage := (len(all) + limit - 1) / limit
	if lastPage == 0 {
		lastPage = 1
	}
	p := models.ShipmentPage{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     limit,
		Total:       len(all),
		Items:       []models.Shipment{},
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return p
	}
	end := min(start+limit, len(all))
	from, to := start+1, end
	p.From, p.To = &from, &to
	p.Items = all[start:end]
	return p
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
