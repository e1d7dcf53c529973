package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/NovaDash/config"
	dashboardapi "github.com/BearBump/NovaDash/internal/api/dashboard_api"
	"github.com/BearBump/NovaDash/internal/broker/kafka"
	"github.com/BearBump/NovaDash/internal/cache/memcache"
	"github.com/BearBump/NovaDash/internal/cache/rediscache"
	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/fake"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/models"
	"github.com/BearBump/NovaDash/internal/services/analytics"
	"github.com/BearBump/NovaDash/internal/services/entities"
	"github.com/BearBump/NovaDash/internal/services/janitor"
	"github.com/BearBump/NovaDash/internal/services/settings"
	"github.com/BearBump/NovaDash/internal/storage/pgusers"
)

type dashAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     dashAPIOpts
	api      *dashboardapi.DashboardAPI
	janitor  *janitor.Janitor
	consumer keyEventsConsumer
	handler  func(key, value []byte) error

	closers []func()
}

func mustBootstrapDashAPI() *dashAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	dc := cfg.Dashboard

	httpAddr := dc.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := dc.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "dash-api"
	}
	topic := cfg.Kafka.APIKeyEventsTopicName
	if topic == "" {
		topic = "api_key.changed"
	}

	app := &dashAPIApp{}

	st := mustOpenPostgresWithRetry(cfg.Database.ConnString(), 60*time.Second)
	app.closers = append(app.closers, st.Close)

	baseURL := cfg.Carrier.BaseURL
	if cfg.Carrier.Mode == "fake" {
		baseURL = mustStartFakeCarrier(app)
	}
	if baseURL == "" {
		panic("carrier.base_url (or NOVA_POST_API_URL) is required")
	}

	httpc := &http.Client{Timeout: cfg.Carrier.HTTPTimeout()}
	registry := novapost.NewRegistry(baseURL, httpc,
		novapost.WithMaxClients(dc.RegistrySize()),
		novapost.WithIdleTTL(dc.RegistryIdleTTL()),
	)

	lists := memcache.New[*carrier.Response]("lists", dc.FetchCacheTTL(), dc.FetchCacheSize())
	reports := memcache.New[*models.Analytics]("analytics", dc.AnalyticsCacheTTL(), dc.AnalyticsCacheSize())
	ents := entities.New(registry, lists)
	an := analytics.New(ents, dc.Concurrency(), reports)

	sweepers := map[string]janitor.Sweeper{
		"carrier_clients": janitor.SweepFunc(registry.Sweep),
		"lists":           janitor.SweepFunc(lists.Purge),
		"analytics":       janitor.SweepFunc(an.Purge),
	}

	deps := settings.Deps{
		Repo:      st,
		Validator: registry,
		Topic:     topic,
		Evictors:  []settings.Evictor{registry.RemoveFingerprint, ents.InvalidateFingerprint, an.InvalidateFingerprint},
	}
	if cfg.Redis.Host != "" {
		rc := rediscache.NewClient(fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
		app.closers = append(app.closers, func() { _ = rc.Close() })
		deps.Limiter = settings.NewRedisLimiter(rediscache.NewRateLimiter(rc), dc.ValidateLimit())
		deps.Verdicts = rediscache.New(rc, "novadash:")
	} else {
		slog.Warn("redis is not configured, key validation limit is per process")
		local := settings.NewLocalLimiter(dc.ValidateLimit())
		deps.Limiter = local
		sweepers["validate_limits"] = janitor.SweepFunc(local.Sweep)
	}
	if cfg.Kafka.Host != "" {
		brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
		producer := kafka.NewProducer(brokers)
		// каждая реплика должна получить событие, поэтому группа своя у процесса
		consumerGroup = kafka.InstanceGroupID(consumerGroup)
		consumer := kafka.NewConsumer(brokers, topic, consumerGroup)
		app.closers = append(app.closers, func() { _ = producer.Close() }, func() { _ = consumer.Close() })
		deps.Publisher = producer
		app.consumer = consumer
	}
	svc := settings.New(deps)

	app.janitor = janitor.New(registry, sweepers).WithInterval(dc.JanitorInterval())

	app.api = dashboardapi.New(dashboardapi.Deps{
		Registry:    registry,
		Entities:    ents,
		Analytics:   an,
		Settings:    svc,
		Janitor:     app.janitor,
		SwaggerPath: os.Getenv("swaggerPath"),
	})
	app.handler = svc.HandleKeyChanged
	app.opts = dashAPIOpts{httpAddr: httpAddr, topic: topic, consumerGroup: consumerGroup}
	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return app
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgusers.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgusers.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

// mustStartFakeCarrier поднимает локальный Nova Post для разработки без ключа.
func mustStartFakeCarrier(app *dashAPIApp) string {
	upstream := fake.New(fake.Seed(240, 30, time.Now())).AcceptAnyKey()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	srv := &http.Server{Handler: upstream.Handler()}
	go func() { _ = srv.Serve(lis) }()
	app.closers = append(app.closers, func() { _ = srv.Close() })

	slog.Info("fake carrier listening", "addr", lis.Addr().String())
	return "http://" + lis.Addr().String()
}

func (a *dashAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *dashAPIApp) Run() error {
	return runDashAPI(a.ctx, a.opts, a.api.Routes(), a.janitor, a.consumer, a.handler)
}
