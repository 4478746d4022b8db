package model

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Each row
// is one active session of a user, optionally bound to a device.  The
// raw token is never stored; only its SHA-256 hex digest.
//
// Fields:
//
//	UserID    – owner of the session (users.id).
//	TokenHash – SHA-256 hex digest of the raw refresh token.
//	DeviceID  – device the session was opened on, empty when none.
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	UserID    string    `json:"user_id"`             // refresh_tokens.user_id
	TokenHash string    `json:"token_hash"`          // refresh_tokens.token_hash
	DeviceID  string    `json:"device_id,omitempty"` // refresh_tokens.device_id (nullable)
	CreatedAt time.Time `json:"created_at"`          // refresh_tokens.created_at
}

// NewRefreshToken validates and builds a session for the raw token.
// deviceID may be empty; when set it must be a UUID.
func NewRefreshToken(userID, token, deviceID string) (*RefreshToken, error) {
	if !isUUID(userID) {
		return nil, invalid("user_id", "must be a UUID")
	}
	if token == "" {
		return nil, invalid("token", "is required")
	}
	if deviceID != "" && !isUUID(deviceID) {
		return nil, invalid("device_id", "must be a UUID")
	}
	return &RefreshToken{
		UserID:    userID,
		TokenHash: HashToken(token),
		DeviceID:  deviceID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// HashToken returns the SHA-256 hex digest of a raw refresh token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Matches reports, in constant time, whether raw is this session's token.
func (t *RefreshToken) Matches(raw string) bool {
	return subtle.ConstantTimeCompare([]byte(t.TokenHash), []byte(HashToken(raw))) == 1
}
