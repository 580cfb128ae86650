package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is a registered blog account. Admins may manage other accounts and assets.
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  *string
	IsAdmin      bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser returns a copy without the password hash.
func (u User) SafeUser() User {
	u.PasswordHash = ""
	return u
}

// TokenPair is the session handed to a client: a short-lived JWT and an opaque refresh token.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// RefreshToken is the stored side of a refresh token. Only the HMAC of the token is kept.
type RefreshToken struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// usable reports why the token can no longer be exchanged, or nil.
func (t RefreshToken) usable(now time.Time) error {
	if t.RevokedAt != nil {
		return fmt.Errorf("%w: revoked", ErrInvalidRefreshToken)
	}
	if !now.Before(t.ExpiresAt) {
		return fmt.Errorf("%w: expired", ErrInvalidRefreshToken)
	}
	return nil
}
