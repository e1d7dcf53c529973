package pgusers

import (
	"context"
	"time"

	"github.com/BearBump/NovaDash/internal/integrations/carrier/novapost"
	"github.com/BearBump/NovaDash/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// SetAPIKey сохраняет ключ пользователя и возвращает предыдущий (пустая
// строка, если его не было).
func (s *Storage) SetAPIKey(ctx context.Context, userID, apiKey string) (string, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	previous, err := lockCurrentKey(ctx, tx, userID)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO user_api_keys (user_id, api_key, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (user_id)
DO UPDATE SET api_key = EXCLUDED.api_key, updated_at = EXCLUDED.updated_at
`, userID, apiKey, now); err != nil {
		return "", errors.Wrap(err, "upsert api key")
	}

	if err := insertEvent(ctx, tx, userID, models.APIKeyActionSet, novapost.Fingerprint(apiKey), now); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", errors.Wrap(err, "commit tx")
	}
	return previous, nil
}

func (s *Storage) GetAPIKey(ctx context.Context, userID string) (string, bool, error) {
	var key string
	err := s.db.QueryRow(ctx, `SELECT api_key FROM user_api_keys WHERE user_id = $1`, userID).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "select api key")
	}
	return key, true, nil
}

// DeleteAPIKey удаляет ключ и возвращает удалённое значение.
func (s *Storage) DeleteAPIKey(ctx context.Context, userID string) (string, bool, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", false, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var key string
	err = tx.QueryRow(ctx, `DELETE FROM user_api_keys WHERE user_id = $1 RETURNING api_key`, userID).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "delete api key")
	}

	if err := insertEvent(ctx, tx, userID, models.APIKeyActionDeleted, novapost.Fingerprint(key), now); err != nil {
		return "", false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", false, errors.Wrap(err, "commit tx")
	}
	return key, true, nil
}

func (s *Storage) ListKeyEvents(ctx context.Context, userID string, limit int) ([]*models.APIKeyEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
SELECT id, user_id, action, key_fingerprint, created_at
FROM api_key_events
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select key events")
	}
	defer rows.Close()

	out := make([]*models.APIKeyEvent, 0, limit)
	for rows.Next() {
		var e models.APIKeyEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.KeyFingerprint, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan key event")
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows")
	}
	return out, nil
}

func lockCurrentKey(ctx context.Context, tx pgx.Tx, userID string) (string, error) {
	var key string
	err := tx.QueryRow(ctx, `SELECT api_key FROM user_api_keys WHERE user_id = $1 FOR UPDATE`, userID).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "select current api key")
	}
	return key, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, userID, action, fingerprint string, at time.Time) error {
	if _, err := tx.Exec(ctx, `
INSERT INTO api_key_events (user_id, action, key_fingerprint, created_at)
VALUES ($1, $2, $3, $4)
`, userID, action, fingerprint, at); err != nil {
		return errors.Wrap(err, "insert key event")
	}
	return nil
}
