package analytics

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BearBump/NovaDash/internal/cache/memcache"
	"github.com/BearBump/NovaDash/internal/concurrency"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/metrics"
	"github.com/BearBump/NovaDash/internal/models"
	"github.com/pkg/errors"
)

const (
	DefaultMaxPages    = 10
	DefaultPerPage     = 100
	DefaultConcurrency = 4
	DefaultCacheTTL    = 60 * time.Second
	DefaultCacheSize   = 100
)

var ErrInvalidQuery = errors.New("invalid analytics query")

type ShipmentLister interface {
	ListShipments(ctx context.Context, apiKey string, p models.ListShipmentsParams) (*models.ShipmentPage, error)
}

type Query struct {
	APIKey   string
	DateFrom string // YYYY-MM-DD, включительно
	DateTo   string
	MaxPages int
	PerPage  int
}

func (q Query) withDefaults() Query {
	if q.MaxPages <= 0 {
		q.MaxPages = DefaultMaxPages
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	return q
}

func (q Query) validate() error {
	if q.APIKey == "" {
		return errors.Wrap(ErrInvalidQuery, "empty api key")
	}
	for _, d := range []string{q.DateFrom, q.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return errors.Wrapf(ErrInvalidQuery, "bad date %q", d)
		}
	}
	return nil
}

func (q Query) cacheKey() string {
	return strings.Join([]string{
		novapost.Fingerprint(q.APIKey),
		q.DateFrom,
		q.DateTo,
		strconv.Itoa(q.MaxPages),
		strconv.Itoa(q.PerPage),
	}, "|")
}

type Service struct {
	lister      ShipmentLister
	concurrency int
	cache       *memcache.Cache[*models.Analytics]
}

func New(lister ShipmentLister, concurrencyLimit int, cache *memcache.Cache[*models.Analytics]) *Service {
	if concurrencyLimit <= 0 {
		concurrencyLimit = DefaultConcurrency
	}
	if cache == nil {
		cache = memcache.New[*models.Analytics]("analytics", DefaultCacheTTL, DefaultCacheSize)
	}
	return &Service{lister: lister, concurrency: concurrencyLimit, cache: cache}
}

// Compute returns the analytics report for q. Upstream failures never fail
// the report: a failed first page yields an empty report, failed later pages
// are left out. The returned value is shared with the cache and must not be
// modified.
func (s *Service) Compute(ctx context.Context, q Query) (*models.Analytics, error) {
	q = q.withDefaults()
	if err := q.validate(); err != nil {
		return nil, err
	}

	return s.cache.Fetch(ctx, q.cacheKey(), func(ctx context.Context) (*models.Analytics, error) {
		start := time.Now()
		defer func() { metrics.AnalyticsDuration.Observe(time.Since(start).Seconds()) }()

		shipments, totalAvailable := s.load(ctx, q)
		return Aggregate(shipments, totalAvailable, q.DateFrom, q.DateTo), nil
	})
}

// Purge drops expired reports.
func (s *Service) Purge() int { return s.cache.Purge() }

// InvalidateFingerprint drops every report computed with the key.
func (s *Service) InvalidateFingerprint(fp string) int {
	return s.cache.DeletePrefix(fp + "|")
}

// load fetches page 1, then pages 2..min(last_page, MaxPages) with bounded
// concurrency. Items keep page order whatever the completion order.
func (s *Service) load(ctx context.Context, q Query) ([]models.Shipment, int) {
	first, err := s.lister.ListShipments(ctx, q.APIKey, models.ListShipmentsParams{Page: 1, Limit: q.PerPage})
	if err != nil {
		metrics.CarrierPageFetches.WithLabelValues("error").Inc()
		slog.Warn("analytics: first page failed, reporting empty set", "key", novapost.MaskKey(q.APIKey), "err", err)
		return nil, 0
	}
	metrics.CarrierPageFetches.WithLabelValues("ok").Inc()

	last := min(first.LastPage, q.MaxPages)
	pages := make([][]models.Shipment, max(last+1, 2))
	pages[1] = first.Items

	pool := concurrency.NewSlotPool(s.concurrency)
	var wg sync.WaitGroup
	for p := 2; p <= last; p++ {
		release, ok := pool.Acquire(ctx)
		if !ok {
			slog.Warn("analytics: stopped fetching pages", "at_page", p, "err", ctx.Err())
			break
		}
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			defer release()

			page, err := s.lister.ListShipments(ctx, q.APIKey, models.ListShipmentsParams{Page: p, Limit: q.PerPage})
			if err != nil {
				metrics.CarrierPageFetches.WithLabelValues("error").Inc()
				slog.Warn("analytics: page failed, skipping", "page", p, "key", novapost.MaskKey(q.APIKey), "err", err)
				return
			}
			metrics.CarrierPageFetches.WithLabelValues("ok").Inc()
			pages[p] = page.Items
		}(p)
	}
	wg.Wait()

	var out []models.Shipment
	for _, items := range pages {
		out = append(out, items...)
	}
	return out, first.Total
}
