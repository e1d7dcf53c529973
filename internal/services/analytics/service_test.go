package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/fake"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/models"
	"github.com/BearBump/NovaDash/internal/services/entities"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// pagedLister отдаёт lastPage страниц по одному отправлению и считает
// одновременные запросы.
type pagedLister struct {
	lastPage int
	delay    func(page int) time.Duration
	fail     map[int]bool

	mu    sync.Mutex
	pages []int

	inFlight, peak atomic.Int32
}

func (l *pagedLister) ListShipments(_ context.Context, _ string, p models.ListShipmentsParams) (*models.ShipmentPage, error) {
	n := l.inFlight.Add(1)
	defer l.inFlight.Add(-1)
	for {
		m := l.peak.Load()
		if n <= m || l.peak.CompareAndSwap(m, n) {
			break
		}
	}

	l.mu.Lock()
	l.pages = append(l.pages, p.Page)
	l.mu.Unlock()

	if l.delay != nil {
		time.Sleep(l.delay(p.Page))
	}
	if l.fail[p.Page] {
		return nil, &carrier.APIError{Message: "boom", Status: http.StatusBadGateway, Kind: carrier.KindUnavailable}
	}
	code := 7
	return &models.ShipmentPage{
		CurrentPage: p.Page,
		LastPage:    l.lastPage,
		Total:       l.lastPage,
		Items:       []models.Shipment{fake.Shipment("p"+string(rune('0'+p.Page%10)), day("2024-01-01").AddDate(0, 0, p.Page), &code)},
	}, nil
}

func (l *pagedLister) requested() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]int(nil), l.pages...)
	sort.Ints(out)
	return out
}

func TestCompute_ClampsToMaxPagesWithBoundedConcurrency(t *testing.T) {
	l := &pagedLister{lastPage: 15, delay: func(int) time.Duration { return 20 * time.Millisecond }}
	svc := New(l, 4, nil)

	a, err := svc.Compute(context.Background(), Query{APIKey: "k", MaxPages: 10})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, l.requested())
	require.LessOrEqual(t, l.peak.Load(), int32(4))
	require.Greater(t, l.peak.Load(), int32(1))
	require.Equal(t, 10, a.LoadedShipments)
	require.Equal(t, 15, a.TotalAvailable)
}

func TestCompute_KeepsPageOrderAndSkipsFailedPages(t *testing.T) {
	l := &pagedLister{
		lastPage: 4,
		// поздние страницы отвечают раньше ранних
		delay: func(p int) time.Duration { return time.Duration(5-p) * 10 * time.Millisecond },
		fail:  map[int]bool{3: true},
	}
	svc := New(l, 4, nil)

	a, err := svc.Compute(context.Background(), Query{APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, 3, a.LoadedShipments)

	var dates []string
	for _, sh := range a.RecentShipments {
		dates = append(dates, sh.DateKey())
	}
	require.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-05"}, dates)
}

func TestCompute_FirstPageFailureGivesEmptyReport(t *testing.T) {
	l := &pagedLister{lastPage: 3, fail: map[int]bool{1: true}}
	svc := New(l, 4, nil)

	a, err := svc.Compute(context.Background(), Query{APIKey: "k"})
	require.NoError(t, err)
	require.Zero(t, a.TotalShipments)
	require.Zero(t, a.TotalAvailable)
	require.Equal(t, []int{1}, l.requested())
}

func TestCompute_CachesByQuery(t *testing.T) {
	l := &pagedLister{lastPage: 1}
	svc := New(l, 4, nil)
	ctx := context.Background()

	first, err := svc.Compute(ctx, Query{APIKey: "k", DateFrom: "2024-01-01"})
	require.NoError(t, err)
	second, err := svc.Compute(ctx, Query{APIKey: "k", DateFrom: "2024-01-01"})
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Len(t, l.requested(), 1)

	_, err = svc.Compute(ctx, Query{APIKey: "k", DateFrom: "2024-01-02"})
	require.NoError(t, err)
	require.Len(t, l.requested(), 2)
}

func TestInvalidateFingerprint(t *testing.T) {
	l := &pagedLister{lastPage: 1}
	svc := New(l, 4, nil)
	ctx := context.Background()

	_, err := svc.Compute(ctx, Query{APIKey: "k1"})
	require.NoError(t, err)
	_, err = svc.Compute(ctx, Query{APIKey: "k2"})
	require.NoError(t, err)

	require.Equal(t, 1, svc.InvalidateFingerprint(novapost.Fingerprint("k1")))

	_, err = svc.Compute(ctx, Query{APIKey: "k1"})
	require.NoError(t, err)
	_, err = svc.Compute(ctx, Query{APIKey: "k2"})
	require.NoError(t, err)
	require.Len(t, l.requested(), 3)
}

func TestCompute_InvalidQuery(t *testing.T) {
	svc := New(&pagedLister{lastPage: 1}, 4, nil)

	_, err := svc.Compute(context.Background(), Query{})
	require.True(t, errors.Is(err, ErrInvalidQuery))

	_, err = svc.Compute(context.Background(), Query{APIKey: "k", DateTo: "01.02.2024"})
	require.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestCompute_EndToEndThroughCarrierClient(t *testing.T) {
	const key = "analytics-e2e-key-1"
	upstream := fake.New([]models.Shipment{
		fake.Shipment("a", day("2024-01-01"), intp(7)),
		fake.Shipment("b", day("2024-01-02"), intp(4)),
		fake.Shipment("c", day("2024-01-03"), intp(8)),
	}, key)
	srv := httptest.NewServer(upstream.Handler())
	defer srv.Close()

	lists := entities.New(novapost.NewRegistry(srv.URL, srv.Client()), nil)
	svc := New(lists, 4, nil)

	a, err := svc.Compute(context.Background(), Query{APIKey: key, DateFrom: "2024-01-01", DateTo: "2024-01-03", PerPage: 1})
	require.NoError(t, err)
	require.Equal(t, 3, a.TotalShipments)
	require.Equal(t, 1, a.DeliveredCount)
	require.Equal(t, 1, a.InTransitCount)
	require.Equal(t, 1, a.ReturnedCount)
	require.InDelta(t, 33.33, a.ReturnedPercentage, 0.01)
	require.Len(t, a.DailyStats, 3)
	require.Equal(t, int64(3), upstream.PageCalls())
	require.Equal(t, int64(1), upstream.AuthCalls())
}
