package settings

import (
	"context"
	"time"

	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) SetAPIKey(ctx context.Context, userID, apiKey string) (string, error) {
	args := m.Called(ctx, userID, apiKey)
	return args.String(0), args.Error(1)
}

func (m *mockRepository) GetAPIKey(ctx context.Context, userID string) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockRepository) DeleteAPIKey(ctx context.Context, userID string) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockRepository) ListKeyEvents(ctx context.Context, userID string, limit int) ([]*models.APIKeyEvent, error) {
	args := m.Called(ctx, userID, limit)
	out, _ := args.Get(0).([]*models.APIKeyEvent)
	return out, args.Error(1)
}

type mockValidator struct{ mock.Mock }

func (m *mockValidator) Validate(ctx context.Context, apiKey string) (novapost.Validation, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(novapost.Validation), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	return m.Called(ctx, topic, key, value).Error(0)
}

type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}
