package entities

import (
	"context"
	"net/url"

	"github.com/BearBump/NovaDash/internal/models"
)

const (
	entityRegistries = "registries"
	registryPath     = "/registry/"
)

func (s *Service) ListRegistries(ctx context.Context, apiKey string, p models.ListRegistriesParams) (*models.RegistryPage, error) {
	params := pageParams(p.Page, p.Limit, defaultPageLimit).
		SetString("createdAtFrom", p.CreatedAtFrom).
		SetString("createdAtTo", p.CreatedAtTo).
		SetList("ids", p.IDs).
		SetList("numbers", p.Numbers).
		SetList("settlementIds", p.SettlementIDs)
	return decode[models.RegistryPage](s.cachedGet(ctx, apiKey, entityRegistries, registryPath, params))
}

func (s *Service) CreateRegistry(ctx context.Context, apiKey string, body any) (*models.Registry, error) {
	defer s.invalidate(apiKey, entityRegistries)
	return decode[models.Registry](s.clients.CarrierClient(apiKey).Post(ctx, registryPath, body))
}

func (s *Service) AddShipmentsToRegistry(ctx context.Context, apiKey, id string, body any) (*models.Registry, error) {
	defer s.invalidate(apiKey, entityRegistries)
	return decode[models.Registry](s.clients.CarrierClient(apiKey).Post(ctx, registryPath+url.PathEscape(id)+"/shipments", body))
}

func (s *Service) RemoveShipmentsFromRegistry(ctx context.Context, apiKey, id string, shipmentIDsIn []string) error {
	defer s.invalidate(apiKey, entityRegistries)
	_, err := s.clients.CarrierClient(apiKey).Delete(ctx, registryPath+url.PathEscape(id)+"/shipments", shipmentIDs{Shipments: shipmentIDsIn})
	return err
}

func (s *Service) RenameRegistry(ctx context.Context, apiKey, id string, body any) (*models.Registry, error) {
	defer s.invalidate(apiKey, entityRegistries)
	return decode[models.Registry](s.clients.CarrierClient(apiKey).Put(ctx, registryPath+url.PathEscape(id)+"/rename", body))
}

func (s *Service) DeleteRegistry(ctx context.Context, apiKey, id string) error {
	defer s.invalidate(apiKey, entityRegistries)
	_, err := s.clients.CarrierClient(apiKey).Delete(ctx, registryPath+url.PathEscape(id), nil)
	return err
}
