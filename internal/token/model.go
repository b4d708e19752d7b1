package token

import (
	"time"

	"github.com/google/uuid"
)

// Token is a stored Discord credential pair. At most one live row exists
// per user; every successful login overwrites it.
type Token struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	TokenType    string     `json:"token_type"`
	Scope        *string    `json:"scope,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"` // nil means non-expiring
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Pair is the credential material produced by a token exchange.
type Pair struct {
	AccessToken  string
	RefreshToken *string
	TokenType    string
	Scope        *string
	ExpiresIn    int64 // seconds until expiry; zero or negative means non-expiring
}

// UpdateParams holds optional fields for a partial token update.
// Nil fields keep the stored value.
type UpdateParams struct {
	AccessToken  *string
	RefreshToken *string
	TokenType    *string
	Scope        *string
	ExpiresAt    *time.Time
}

// Verification is the outcome of a local token validity check.
type Verification struct {
	UserID    uuid.UUID  `json:"user_id"`
	HasToken  bool       `json:"has_token"`
	IsExpired bool       `json:"is_expired"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Valid reports whether a usable token exists: one is stored and it either
// never expires or expires in the future.
func (v Verification) Valid() bool {
	return v.HasToken && !v.IsExpired
}
