package entities

import (
	"context"
	"net/url"

	"github.com/BearBump/NovaDash/internal/models"
)

const (
	entityPickups    = "pickups"
	defaultPageLimit = 15
	pickupsPath      = "/pickups"
)

type shipmentIDs struct {
	Shipments []string `json:"shipments"`
}

func (s *Service) ListPickups(ctx context.Context, apiKey string, p models.PageParams) (*models.PickupPage, error) {
	return decode[models.PickupPage](s.cachedGet(ctx, apiKey, entityPickups, pickupsPath, pageParams(p.Page, p.Limit, defaultPageLimit)))
}

func (s *Service) CreatePickup(ctx context.Context, apiKey string, body any) (*models.Pickup, error) {
	defer s.invalidate(apiKey, entityPickups)
	return decode[models.Pickup](s.clients.CarrierClient(apiKey).Post(ctx, pickupsPath, body))
}

func (s *Service) UpdatePickup(ctx context.Context, apiKey, id string, body any) (*models.Pickup, error) {
	defer s.invalidate(apiKey, entityPickups)
	return decode[models.Pickup](s.clients.CarrierClient(apiKey).Put(ctx, pickupsPath+"/"+url.PathEscape(id), body))
}

func (s *Service) DeletePickup(ctx context.Context, apiKey, id string) error {
	defer s.invalidate(apiKey, entityPickups)
	_, err := s.clients.CarrierClient(apiKey).Delete(ctx, pickupsPath+"/"+url.PathEscape(id), nil)
	return err
}

func (s *Service) UpdatePickupStatus(ctx context.Context, apiKey, id, status string) (*models.Pickup, error) {
	defer s.invalidate(apiKey, entityPickups)
	body := map[string]string{"status": status}
	return decode[models.Pickup](s.clients.CarrierClient(apiKey).Put(ctx, pickupsPath+"/"+url.PathEscape(id)+"/status", body))
}

func (s *Service) AddShipmentsToPickup(ctx context.Context, apiKey, id string, shipmentIDsIn []string) error {
	defer s.invalidate(apiKey, entityPickups)
	_, err := s.clients.CarrierClient(apiKey).Post(ctx, pickupsPath+"/"+url.PathEscape(id)+"/shipments", shipmentIDs{Shipments: shipmentIDsIn})
	return err
}

func (s *Service) RemoveShipmentsFromPickup(ctx context.Context, apiKey, id string, shipmentIDsIn []string) error {
	defer s.invalidate(apiKey, entityPickups)
	_, err := s.clients.CarrierClient(apiKey).Delete(ctx, pickupsPath+"/"+url.PathEscape(id)+"/shipments", shipmentIDs{Shipments: shipmentIDsIn})
	return err
}

func (s *Service) PickupTimeIntervals(ctx context.Context, apiKey string) ([]models.PickupTimeInterval, error) {
	return decodeList[models.PickupTimeInterval](s.clients.CarrierClient(apiKey).Get(ctx, pickupsPath+"/time-intervals", nil))
}
