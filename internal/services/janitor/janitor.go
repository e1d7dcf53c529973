package janitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/BearBump/NovaDash/internal/metrics"
)

// Sweeper is anything that drops its stale entries and reports how many.
type Sweeper interface {
	Sweep() int
}

// SweepFunc adapts a plain function, e.g. a cache's Purge.
type SweepFunc func() int

func (f SweepFunc) Sweep() int { return f() }

// Sized reports the live size of the carrier client registry.
type Sized interface {
	Len() int
}

// Janitor periodically sweeps idle carrier clients and expired cache entries.
type Janitor struct {
	registry Sized
	sweepers map[string]Sweeper

	interval  time.Duration
	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	cycles              atomic.Int64
	totalSwept          atomic.Int64
}

func New(registry Sized, sweepers map[string]Sweeper) *Janitor {
	return &Janitor{
		registry:          registry,
		sweepers:          sweepers,
		interval:          time.Minute,
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (j *Janitor) WithInterval(d time.Duration) *Janitor {
	if d > 0 {
		j.interval = d
	}
	return j
}

// Trigger forces an immediate cycle (best-effort, non-blocking).
func (j *Janitor) Trigger() {
	j.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case j.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	Cycles        int64      `json:"cycles"`
	TotalSwept    int64      `json:"totalSwept"`
	Clients       int        `json:"clients"`
}

func (j *Janitor) Stats() Stats {
	st := Stats{
		StartedAt:  time.Unix(0, j.startedAtUnixNano).UTC(),
		Cycles:     j.cycles.Load(),
		TotalSwept: j.totalSwept.Load(),
	}
	if j.registry != nil {
		st.Clients = j.registry.Len()
	}
	if n := j.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := j.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	return st
}

func (j *Janitor) Run(ctx context.Context) error {
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			j.runOnce()
		case <-j.triggerCh:
			j.runOnce()
		}
	}
}

func (j *Janitor) runOnce() {
	j.lastCycleUnixNano.Store(time.Now().UTC().UnixNano())
	j.cycles.Add(1)

	for name, s := range j.sweepers {
		if n := s.Sweep(); n > 0 {
			j.totalSwept.Add(int64(n))
			metrics.JanitorSwept.WithLabelValues(name).Add(float64(n))
			slog.Debug("janitor: swept", "target", name, "dropped", n)
		}
	}
	if j.registry != nil {
		metrics.RegistryClients.Set(float64(j.registry.Len()))
	}
}
