package models

import (
	"time"

	"github.com/google/uuid"
)

// Revocation reasons recorded on user_refresh_tokens rows.
const (
	RevokeReasonRotated         = "rotated"
	RevokeReasonExpired         = "expired"
	RevokeReasonReuseDetected   = "reuse_detected"
	RevokeReasonInactiveUser    = "inactive_user"
	RevokeReasonLogout          = "logout"
	RevokeReasonPasswordChanged = "password_changed"
)

// RefreshToken is one link in a token family. The raw value is returned to
// the client exactly once; only its SHA-256 hash is stored.
type RefreshToken struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	FamilyID         uuid.UUID  `json:"family_id" db:"family_id"`
	TokenHash        string     `json:"-" db:"token_hash"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at" db:"expires_at"`
	CreatedIP        string     `json:"created_ip" db:"created_ip"`
	CreatedUserAgent string     `json:"created_user_agent" db:"created_user_agent"`
	RevokedAt        *time.Time `json:"revoked_at" db:"revoked_at"`
	RevokedReason    *string    `json:"revoked_reason" db:"revoked_reason"`
	RevokedIP        *string    `json:"revoked_ip" db:"revoked_ip"`
	ReplacedBy       *uuid.UUID `json:"replaced_by" db:"replaced_by"`
}

// IsRevoked reports whether the token has been revoked. Revocation is
// terminal; revoked rows are never re-activated.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired reports whether the token lifetime has elapsed at the given time.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive reports whether the token can still be rotated: not revoked and
// not expired.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}

// TokenPair is the payload returned by login and refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	IssuedAt     time.Time `json:"issued_at"`
}
