package novapost

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/BearBump/NovaDash/internal/integrations/carrier"
)

const (
	defaultMaxClients = 100
	defaultIdleTTL    = 2 * time.Hour
)

type registryEntry struct {
	client       *Client
	lastAccessed time.Time
}

// Registry keeps one Client per API key so tokens survive between requests.
// It never holds more than maxClients entries.
type Registry struct {
	baseURL string
	httpc   *http.Client
	now     func() time.Time

	maxClients int
	idleTTL    time.Duration

	mu      sync.Mutex
	clients map[string]*registryEntry
}

type RegistryOption func(*Registry)

func WithMaxClients(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxClients = n
		}
	}
}

func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(baseURL string, httpc *http.Client, opts ...RegistryOption) *Registry {
	r := &Registry{
		baseURL:    baseURL,
		httpc:      httpc,
		now:        time.Now,
		maxClients: defaultMaxClients,
		idleTTL:    defaultIdleTTL,
		clients:    make(map[string]*registryEntry),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Client returns the cached client for apiKey or creates one.
func (r *Registry) Client(apiKey string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.clients[apiKey]; ok {
		e.lastAccessed = now
		return e.client
	}

	if len(r.clients) >= r.maxClients {
		r.evictLocked(now)
	}

	c := r.newClient(apiKey)
	r.clients[apiKey] = &registryEntry{client: c, lastAccessed: now}
	return c
}

func (r *Registry) newClient(apiKey string) *Client {
	c := NewClient(r.baseURL, apiKey, r.httpc)
	c.tokens.now = r.now
	return c
}

// adopt stores a client that has already authenticated. A client cached for
// the same key meanwhile keeps its identity and takes over the fresh token.
func (r *Registry) adopt(apiKey string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.clients[apiKey]; ok {
		e.client.tokens.seed(c.tokens)
		e.lastAccessed = now
		return
	}
	if len(r.clients) >= r.maxClients {
		r.evictLocked(now)
	}
	r.clients[apiKey] = &registryEntry{client: c, lastAccessed: now}
}

// CarrierClient is Client behind the carrier.Client interface.
func (r *Registry) CarrierClient(apiKey string) carrier.Client {
	return r.Client(apiKey)
}

// Lookup returns the cached client without creating or touching it.
func (r *Registry) Lookup(apiKey string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.clients[apiKey]
	if !ok {
		return nil, false
	}
	return e.client, true
}

func (r *Registry) Remove(apiKey string) {
	r.mu.Lock()
	delete(r.clients, apiKey)
	r.mu.Unlock()
}

// RemoveFingerprint drops the client whose key has the given Fingerprint.
// Used when another instance reports a key change.
func (r *Registry) RemoveFingerprint(fp string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.clients {
		if Fingerprint(k) == fp {
			delete(r.clients, k)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Sweep drops clients idle longer than idleTTL.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropIdleLocked(r.now())
}

func (r *Registry) dropIdleLocked(now time.Time) int {
	n := 0
	for k, e := range r.clients {
		if now.Sub(e.lastAccessed) > r.idleTTL {
			delete(r.clients, k)
			n++
		}
	}
	return n
}

// evictLocked makes room for one more client: idle entries go first, then
// the least recently used ones.
func (r *Registry) evictLocked(now time.Time) {
	idle := r.dropIdleLocked(now)
	lru := 0
	for len(r.clients) >= r.maxClients {
		var oldestKey string
		var oldest time.Time
		for k, e := range r.clients {
			if oldestKey == "" || e.lastAccessed.Before(oldest) {
				oldestKey, oldest = k, e.lastAccessed
			}
		}
		delete(r.clients, oldestKey)
		lru++
	}
	slog.Info("carrier registry: evicted clients", "idle", idle, "lru", lru, "size", len(r.clients))
}
