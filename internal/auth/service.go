package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/blogd/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer       = "blogd"
	tokenAudience     = "blogd-api"
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt limit
)

// userStore abstracts the persistence layer.
type userStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, displayName *string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, displayName, passwordHash *string) (User, error)

	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	FindRefreshToken(ctx context.Context, tokenHash string) (RefreshToken, error)
	RevokeToken(ctx context.Context, userID uuid.UUID, tokenHash string) error
}

// Service implements registration, login and the session token flow of the blog.
type Service struct {
	store   userStore
	cfg     config.AuthConfig
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// NewService creates a Service with dependencies.
func NewService(store userStore, cfg config.AuthConfig) *Service {
	s := &Service{
		store:   store,
		cfg:     cfg,
		nowFunc: time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }),
	)
	return s
}

// RegisterInput carries data for user registration.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName *string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is a user together with a freshly issued session.
type AuthResult struct {
	User   User
	Tokens TokenPair
}

// UserClaims describes the validated identity extracted from an access token.
type UserClaims struct {
	UserID    uuid.UUID
	Email     string
	IsAdmin   bool
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Register creates an account and signs the new user in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email, err := normalizeCredentials(input.Email, input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	hashed, err := hashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, hashed, input.DisplayName)
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		return AuthResult{}, ErrEmailAlreadyExists
	case err != nil:
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Login checks the password and starts a new session. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email, err := normalizeCredentials(input.Email, input.Password)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return AuthResult{}, ErrInvalidCredentials
	case err != nil:
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// ValidateAccessToken verifies signature, issuer, audience and expiry, and returns the caller.
func (s *Service) ValidateAccessToken(tokenString string) (UserClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return UserClaims{}, ErrUnauthorized
	}

	var claims accessClaims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.AccessTokenSecret), nil
	})
	if err != nil {
		return UserClaims{}, ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return UserClaims{}, ErrUnauthorized
	}

	result := UserClaims{
		UserID:    userID,
		Email:     claims.Email,
		IsAdmin:   claims.IsAdmin,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordLength {
		return "", fmt.Errorf("password exceeds maximum length of %d characters", maxPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func validPassword(password string) bool {
	return strings.TrimSpace(password) != "" &&
		len(password) >= minPasswordLength &&
		len(password) <= maxPasswordLength
}

// normalizeCredentials lower-cases the email and rejects blank or out-of-range input.
func normalizeCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !validPassword(password) {
		return "", ErrInvalidCredentials
	}
	return email, nil
}
