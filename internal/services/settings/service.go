package settings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/NovaDash/internal/broker/messages"
	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/metrics"
	"github.com/BearBump/NovaDash/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const invalidVerdictTTL = time.Minute

type Repository interface {
	SetAPIKey(ctx context.Context, userID, apiKey string) (string, error)
	GetAPIKey(ctx context.Context, userID string) (string, bool, error)
	DeleteAPIKey(ctx context.Context, userID string) (string, bool, error)
	ListKeyEvents(ctx context.Context, userID string, limit int) ([]*models.APIKeyEvent, error)
}

type Validator interface {
	Validate(ctx context.Context, apiKey string) (novapost.Validation, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// VerdictCache помнит отвергнутые ключи, чтобы не гонять их в Nova Post повторно.
type VerdictCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Evictor drops in-process state (clients, caches) tied to a key fingerprint.
type Evictor func(fingerprint string) int

type Deps struct {
	Repo      Repository
	Validator Validator
	Limiter   Limiter
	Verdicts  VerdictCache
	Publisher Publisher
	Topic     string
	Evictors  []Evictor
}

type Service struct {
	repo      Repository
	validator Validator
	limiter   Limiter
	verdicts  VerdictCache
	publisher Publisher
	topic     string
	evictors  []Evictor
}

func New(d Deps) *Service {
	return &Service{
		repo:      d.Repo,
		validator: d.Validator,
		limiter:   d.Limiter,
		verdicts:  d.Verdicts,
		publisher: d.Publisher,
		topic:     d.Topic,
		evictors:  d.Evictors,
	}
}

// APIKey resolves the carrier key of a user.
func (s *Service) APIKey(ctx context.Context, userID string) (string, error) {
	key, ok, err := s.repo.GetAPIKey(ctx, userID)
	if err != nil {
		return "", err
	}
	if !ok || key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// SaveAPIKey validates apiKey against the carrier and stores it. Validation
// also warms the carrier client for the key.
func (s *Service) SaveAPIKey(ctx context.Context, userID, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrEmptyKey
	}

	if ok, retry := allow(ctx, s.limiter, "rl:validate:"+userID); !ok {
		metrics.KeyValidations.WithLabelValues("throttled").Inc()
		return &RetryAfterError{RetryAfter: retry}
	}

	fp := novapost.Fingerprint(apiKey)
	if s.knownInvalid(ctx, fp) {
		metrics.KeyValidations.WithLabelValues("invalid_cached").Inc()
		return ErrKeyInvalid
	}

	v, err := s.validator.Validate(ctx, apiKey)
	if err != nil {
		return errors.Wrap(err, "validate api key")
	}
	if !v.Valid {
		metrics.KeyValidations.WithLabelValues(string(v.Reason)).Inc()
		switch v.Reason {
		case novapost.ReasonInvalid:
			s.rememberInvalid(ctx, fp)
			return ErrKeyInvalid
		case novapost.ReasonRateLimited:
			return ErrKeyRateLimited
		default:
			return ErrUpstreamUnavailable
		}
	}
	metrics.KeyValidations.WithLabelValues("valid").Inc()

	previous, err := s.repo.SetAPIKey(ctx, userID, apiKey)
	if err != nil {
		return errors.Wrap(err, "save api key")
	}
	slog.Info("settings: api key saved", "user_id", userID, "key", novapost.MaskKey(apiKey))

	msg := messages.APIKeyChanged{
		UserID:         userID,
		Action:         models.APIKeyActionSet,
		KeyFingerprint: fp,
	}
	if previous != "" && previous != apiKey {
		msg.PreviousFingerprint = novapost.Fingerprint(previous)
		s.evict(msg.PreviousFingerprint)
	}
	s.publish(ctx, msg)
	return nil
}

func (s *Service) DeleteAPIKey(ctx context.Context, userID string) error {
	deleted, ok, err := s.repo.DeleteAPIKey(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "delete api key")
	}
	if !ok {
		return ErrNoAPIKey
	}

	fp := novapost.Fingerprint(deleted)
	s.evict(fp)
	s.publish(ctx, messages.APIKeyChanged{
		UserID:              userID,
		Action:              models.APIKeyActionDeleted,
		PreviousFingerprint: fp,
	})
	return nil
}

func (s *Service) KeyHistory(ctx context.Context, userID string, limit int) ([]*models.APIKeyEvent, error) {
	return s.repo.ListKeyEvents(ctx, userID, limit)
}

// HandleKeyChanged is the Kafka handler for api key events from any replica.
// Undecodable messages are logged and skipped.
func (s *Service) HandleKeyChanged(_, value []byte) error {
	msg, err := messages.DecodeAPIKeyChanged(value)
	if err != nil {
		slog.Warn("settings: skip bad api key event", "err", err)
		return nil
	}
	if fp := msg.StaleFingerprint(); fp != "" {
		n := s.evict(fp)
		slog.Info("settings: evicted state for changed key", "user_id", msg.UserID, "action", msg.Action, "dropped", n)
	}
	return nil
}

func (s *Service) evict(fp string) int {
	n := 0
	for _, e := range s.evictors {
		n += e(fp)
	}
	return n
}

func (s *Service) publish(ctx context.Context, msg messages.APIKeyChanged) {
	if s.publisher == nil || s.topic == "" {
		return
	}
	msg.EventID = uuid.NewString()
	msg.At = time.Now().UTC()

	b, err := msg.Encode()
	if err == nil {
		err = s.publisher.Publish(ctx, s.topic, []byte(msg.UserID), b)
	}
	if err != nil {
		// ключ уже сохранён; другие реплики догонят по TTL реестра
		slog.Error("settings: publish api key event failed", "user_id", msg.UserID, "err", err)
	}
}

type verdict struct {
	Reason novapost.ValidationReason `json:"reason"`
}

func (s *Service) knownInvalid(ctx context.Context, fp string) bool {
	if s.verdicts == nil {
		return false
	}
	var v verdict
	ok, err := s.verdicts.Get(ctx, "verdict:"+fp, &v)
	if err != nil {
		slog.Warn("settings: verdict cache get failed", "err", err)
		return false
	}
	return ok && v.Reason == novapost.ReasonInvalid
}

func (s *Service) rememberInvalid(ctx context.Context, fp string) {
	if s.verdicts == nil {
		return
	}
	if err := s.verdicts.Set(ctx, "verdict:"+fp, verdict{Reason: novapost.ReasonInvalid}, invalidVerdictTTL); err != nil {
		slog.Warn("settings: verdict cache set failed", "err", err)
	}
}
