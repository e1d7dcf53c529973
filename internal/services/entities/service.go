package entities

import (
	"context"
	"strings"
	"time"

	"github.com/BearBump/NovaDash/internal/cache/memcache"
	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
)

const (
	DefaultListCacheTTL  = 60 * time.Second
	DefaultListCacheSize = 200
)

type ClientProvider interface {
	CarrierClient(apiKey string) carrier.Client
}

// Service — типизированные операции над сущностями Nova Post. Списки идут
// через общий кэш ответов, запись сбрасывает кэш списков той же сущности.
type Service struct {
	clients ClientProvider
	lists   *memcache.Cache[*carrier.Response]
}

func New(clients ClientProvider, lists *memcache.Cache[*carrier.Response]) *Service {
	if lists == nil {
		lists = memcache.New[*carrier.Response]("lists", DefaultListCacheTTL, DefaultListCacheSize)
	}
	return &Service{clients: clients, lists: lists}
}

// listKey = fingerprint|entity|query. Сам ключ в память кэша не попадает.
func listKey(apiKey, entity string, params carrier.Params) string {
	return strings.Join([]string{novapost.Fingerprint(apiKey), entity, params.Encode()}, "|")
}

func (s *Service) cachedGet(ctx context.Context, apiKey, entity, path string, params carrier.Params) (*carrier.Response, error) {
	return s.lists.Fetch(ctx, listKey(apiKey, entity, params), func(ctx context.Context) (*carrier.Response, error) {
		return s.clients.CarrierClient(apiKey).Get(ctx, path, params)
	})
}

func (s *Service) invalidate(apiKey, entity string) {
	s.lists.DeletePrefix(novapost.Fingerprint(apiKey) + "|" + entity + "|")
}

// InvalidateKey drops every cached list of apiKey.
func (s *Service) InvalidateKey(apiKey string) int {
	return s.InvalidateFingerprint(novapost.Fingerprint(apiKey))
}

func (s *Service) InvalidateFingerprint(fp string) int {
	return s.lists.DeletePrefix(fp + "|")
}

// Purge drops expired list entries.
func (s *Service) Purge() int { return s.lists.Purge() }

func decode[T any](resp *carrier.Response, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	out, err := carrier.DecodeJSON[T](resp)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeList[T any](resp *carrier.Response, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	return carrier.DecodeJSON[[]T](resp)
}

func pageParams(page, limit, defLimit int) carrier.Params {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defLimit
	}
	return carrier.Params{}.SetInt("page", page).SetInt("limit", limit)
}
