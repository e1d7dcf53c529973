package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novadash",
		Name:      "cache_hits_total",
		Help:      "In-process cache hits.",
	}, []string{"cache"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novadash",
		Name:      "cache_misses_total",
		Help:      "In-process cache misses.",
	}, []string{"cache"})

	CacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novadash",
		Name:      "cache_evictions_total",
		Help:      "Entries dropped because of expiry or size limit.",
	}, []string{"cache"})

	CarrierPageFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novadash",
		Name:      "carrier_page_fetches_total",
		Help:      "Shipment page fetches made by the analytics aggregator.",
	}, []string{"result"})

	AnalyticsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "novadash",
		Name:      "analytics_compute_seconds",
		Help:      "Time to compute an analytics report on a cache miss.",
		Buckets:   prometheus.DefBuckets,
	})

	RegistryClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "novadash",
		Name:      "registry_clients",
		Help:      "Carrier clients held by the registry.",
	})

	JanitorSwept = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novadash",
		Name:      "janitor_swept_total",
		Help:      "Entries dropped by the periodic janitor.",
	}, []string{"target"})

	KeyValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novadash",
		Name:      "api_key_validations_total",
		Help:      "API key validation outcomes.",
	}, []string{"outcome"})
)
