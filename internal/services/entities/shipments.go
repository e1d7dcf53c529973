package entities

import (
	"context"
	"net/http"
	"net/url"

	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/BearBump/NovaDash/internal/models"
	"github.com/pkg/errors"
)

const (
	entityShipments   = "shipments"
	defaultShipsLimit = 15
)

func (s *Service) ListShipments(ctx context.Context, apiKey string, p models.ListShipmentsParams) (*models.ShipmentPage, error) {
	params := pageParams(p.Page, p.Limit, defaultShipsLimit).
		SetList("ids", p.IDs).
		SetList("numbers", p.Numbers)
	return decode[models.ShipmentPage](s.cachedGet(ctx, apiKey, entityShipments, "/shipments", params))
}

func (s *Service) CreateShipment(ctx context.Context, apiKey string, body any) (*models.ShipmentCreated, error) {
	defer s.invalidate(apiKey, entityShipments)
	return decode[models.ShipmentCreated](s.clients.CarrierClient(apiKey).Post(ctx, "/shipments", body))
}

func (s *Service) CalculateCost(ctx context.Context, apiKey string, body any) (*models.CostCalculation, error) {
	return decode[models.CostCalculation](s.clients.CarrierClient(apiKey).Post(ctx, "/shipments/calculations", body))
}

func (s *Service) UpdateShipment(ctx context.Context, apiKey, id string, body any) (*models.ShipmentCreated, error) {
	defer s.invalidate(apiKey, entityShipments)
	return decode[models.ShipmentCreated](s.clients.CarrierClient(apiKey).Put(ctx, "/shipments/"+url.PathEscape(id), body))
}

func (s *Service) DeleteShipment(ctx context.Context, apiKey, id string) error {
	defer s.invalidate(apiKey, entityShipments)
	_, err := s.clients.CarrierClient(apiKey).Delete(ctx, "/shipments/"+url.PathEscape(id), nil)
	return err
}

func (s *Service) TrackingHistory(ctx context.Context, apiKey string, numbers []string) (*models.TrackingHistory, error) {
	if len(numbers) == 0 {
		return &models.TrackingHistory{Items: []models.TrackingHistoryItem{}}, nil
	}
	params := carrier.Params{}.SetList("numbers", numbers)
	return decode[models.TrackingHistory](s.clients.CarrierClient(apiKey).Get(ctx, "/shipments/tracking/history/", params))
}

var ErrUnknownPrintKind = errors.New("unknown print document kind")

// PrintDocuments returns the PDF produced by the carrier.
func (s *Service) PrintDocuments(ctx context.Context, apiKey, kind string, numbers []string) ([]byte, error) {
	switch kind {
	case models.PrintMarking, models.PrintInternational, models.PrintInvoice:
	default:
		return nil, errors.Wrapf(ErrUnknownPrintKind, "kind %q", kind)
	}
	params := carrier.Params{}.SetString("type", kind).SetList("numbers", numbers)
	resp, err := s.clients.CarrierClient(apiKey).Get(ctx, "/shipments/print", params)
	if err != nil {
		return nil, err
	}
	if !resp.Binary {
		return nil, &carrier.APIError{Message: "carrier did not return a pdf", Status: http.StatusBadGateway, Kind: carrier.KindDecode}
	}
	return resp.Body, nil
}
