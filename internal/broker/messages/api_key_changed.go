package messages

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// APIKeyChanged публикуется при сохранении или удалении ключа пользователя.
// Реплики по нему выкидывают клиентов и кэши со старым ключом.
type APIKeyChanged struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Action  string `json:"action"`

	// Отпечатки, сами ключи в брокер не попадают.
	KeyFingerprint      string `json:"key_fingerprint,omitempty"`
	PreviousFingerprint string `json:"previous_fingerprint,omitempty"`

	At time.Time `json:"at"`
}

// StaleFingerprint is the fingerprint whose cached state must be dropped.
func (m APIKeyChanged) StaleFingerprint() string {
	return m.PreviousFingerprint
}

func (m APIKeyChanged) Encode() ([]byte, error) {
	b, err := json.Marshal(m)
	return b, errors.Wrap(err, "encode api key changed")
}

func DecodeAPIKeyChanged(b []byte) (APIKeyChanged, error) {
	var m APIKeyChanged
	if err := json.Unmarshal(b, &m); err != nil {
		return APIKeyChanged{}, errors.Wrap(err, "decode api key changed")
	}
	if m.UserID == "" {
		return APIKeyChanged{}, errors.New("decode api key changed: empty user_id")
	}
	return m, nil
}
