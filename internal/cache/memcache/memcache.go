package memcache

import (
	"container/list"
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/NovaDash/internal/metrics"
	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache bounded by entry count. When full, the oldest inserted
// entry goes first; reads do not change the order.
type Cache[V any] struct {
	name       string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List
	// gen растёт при каждой инвалидации. Загрузка, начатая до неё, не кладёт
	// результат в кэш.
	gen uint64

	flight singleflight.Group
}

type Option func(*options)

type options struct {
	now func() time.Time
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New[V any](name string, ttl time.Duration, maxEntries int, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache[V]{
		name:       name,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        o.now,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.peek(key)
	if ok {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}
	return v, ok
}

func (c *Cache[V]) peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !c.now().Before(e.expiresAt) {
		c.removeLocked(el)
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		return zero, false
	}
	return e.value, true
}

// Set stores value. Overwriting a key counts as a fresh insertion.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

// setAt stores value unless the cache was invalidated after gen was taken.
func (c *Cache[V]) setAt(gen uint64, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.setLocked(key, value)
}

func (c *Cache[V]) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Cache[V]) setLocked(key string, value V) {
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
	for c.order.Len() >= c.maxEntries {
		c.removeLocked(c.order.Front())
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
	c.items[key] = c.order.PushBack(&entry[V]{key: key, value: value, expiresAt: c.now().Add(c.ttl)})
}

// Fetch returns the cached value or runs load once for all concurrent callers
// of the same key. Only successful results are stored. A caller whose ctx ends
// stops waiting, the load itself keeps running for the others.
//
// A load that overlaps Delete or DeletePrefix returns its value to the callers
// already waiting but does not store it, and callers arriving after the
// invalidation start a new load.
func (c *Cache[V]) Fetch(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	gen := c.generation()
	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key+"\x00"+strconv.FormatUint(gen, 10), func() (any, error) {
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		v, err := load(detached)
		if err != nil {
			return nil, err
		}
		c.setAt(gen, key, v)
		return v, nil
	})

	var zero V
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// DeletePrefix drops every key starting with prefix.
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	n := 0
	for k, el := range c.items {
		if strings.HasPrefix(k, prefix) {
			c.removeLocked(el)
			n++
		}
	}
	return n
}

// Purge drops expired entries.
func (c *Cache[V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !now.Before(el.Value.(*entry[V]).expiresAt) {
			c.removeLocked(el)
			n++
		}
		el = next
	}
	if n > 0 {
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
	}
	return n
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*entry[V])
	delete(c.items, e.key)
}
