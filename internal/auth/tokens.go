package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenLength = 48

type accessClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Refresh exchanges a refresh token for a new session. The presented token is revoked before the
// new pair is issued, so each refresh token works once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidRefreshToken
	}

	stored, err := s.store.FindRefreshToken(ctx, s.hashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			return AuthResult{}, err
		}
		return AuthResult{}, fmt.Errorf("find refresh token: %w", err)
	}
	if err := stored.usable(s.nowFunc()); err != nil {
		return AuthResult{}, err
	}

	// A concurrent refresh of the same token loses here.
	if err := s.store.RevokeToken(ctx, stored.UserID, stored.TokenHash); err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			return AuthResult{}, err
		}
		return AuthResult{}, fmt.Errorf("revoke refresh token: %w", err)
	}

	user, err := s.store.FindUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token of the user. Revoking an unknown or already revoked token
// succeeds.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrUnauthorized
	}
	err := s.store.RevokeToken(ctx, userID, s.hashRefreshToken(refreshToken))
	if err != nil && !errors.Is(err, ErrInvalidRefreshToken) {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user User) (AuthResult, error) {
	now := s.nowFunc()

	access, accessExpiry, err := s.generateAccessToken(user, now)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}
	refreshExpiry := now.Add(s.cfg.RefreshTokenTTL)
	if err := s.store.StoreRefreshToken(ctx, user.ID, s.hashRefreshToken(refresh), refreshExpiry); err != nil {
		return AuthResult{}, fmt.Errorf("store refresh token: %w", err)
	}

	return AuthResult{
		User: user.SafeUser(),
		Tokens: TokenPair{
			AccessToken:        access,
			AccessTokenExpiry:  accessExpiry,
			RefreshToken:       refresh,
			RefreshTokenExpiry: refreshExpiry,
		},
	}, nil
}

func (s *Service) generateAccessToken(user User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	claims := accessClaims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// hashRefreshToken keys stored tokens by HMAC so a leaked table cannot be replayed.
func (s *Service) hashRefreshToken(token string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.RefreshTokenSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func newRefreshToken() (string, error) {
	raw := make([]byte, refreshTokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
