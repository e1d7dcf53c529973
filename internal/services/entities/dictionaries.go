package entities

import (
	"context"

	"github.com/BearBump/NovaDash/internal/integrations/carrier"
	"github.com/BearBump/NovaDash/internal/models"
)

const entityDivisions = "divisions"

func (s *Service) ListDivisions(ctx context.Context, apiKey string, p models.ListDivisionsParams) (*models.DivisionPage, error) {
	params := pageParams(p.Page, p.Limit, defaultPageLimit).
		SetList("countryCodes", p.CountryCodes).
		SetList("settlementIds", p.SettlementIDs).
		SetList("divisionCategories", p.DivisionCategories)
	if p.Latitude != nil && p.Longitude != nil {
		params["latitude"] = carrier.Float(*p.Latitude)
		params["longitude"] = carrier.Float(*p.Longitude)
	}
	return decode[models.DivisionPage](s.cachedGet(ctx, apiKey, entityDivisions, "/divisions", params))
}

func (s *Service) Measurements(ctx context.Context, apiKey string) ([]models.Measurement, error) {
	return decodeList[models.Measurement](s.cachedGet(ctx, apiKey, "measurements", "/measurements", nil))
}

func (s *Service) Currencies(ctx context.Context, apiKey string) ([]models.Currency, error) {
	return decodeList[models.Currency](s.cachedGet(ctx, apiKey, "currencies", "/currencies", nil))
}

func (s *Service) CargoClassifiers(ctx context.Context, apiKey string) ([]models.CargoClassifier, error) {
	return decodeList[models.CargoClassifier](s.cachedGet(ctx, apiKey, "cargo-classifiers", "/cargo-classifiers", nil))
}

func (s *Service) ExchangeRates(ctx context.Context, apiKey string) ([]models.ExchangeRate, error) {
	return decodeList[models.ExchangeRate](s.cachedGet(ctx, apiKey, "exchange-rates", "/exchange-rates", nil))
}
