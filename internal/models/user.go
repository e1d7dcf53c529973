package models

import "time"

// Key change actions.
const (
	APIKeyActionSet     = "set"
	APIKeyActionDeleted = "deleted"
)

// APIKeyEvent — запись в журнале смены ключа. Сам ключ не хранится, только отпечаток.
type APIKeyEvent struct {
	ID             uint64    `json:"id"`
	UserID         string    `json:"userId"`
	Action         string    `json:"action"`
	KeyFingerprint string    `json:"keyFingerprint"`
	CreatedAt      time.Time `json:"createdAt"`
}
