package novapost

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaskKey hides an API key for logs: first 4 and last 4 characters only.
func MaskKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "••••••••"
	}
	return apiKey[:4] + "••••" + apiKey[len(apiKey)-4:]
}

// Fingerprint identifies a key across processes without revealing it.
func Fingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
