package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// GenerateCSRF derives a deterministic per-session CSRF token from the
// configured key, so tokens survive a server restart without extra state.
func GenerateCSRF(key, sessionID string) string {
	m := hmac.New(sha256.New, []byte(key))
	_, _ = m.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

func ValidCSRF(token, want string) bool {
	if token == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(want)) == 1
}
