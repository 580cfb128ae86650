package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abduss/blogd/internal/config"
	"github.com/google/uuid"
)

var testAuthConfig = config.AuthConfig{
	AccessTokenSecret:  "access-secret",
	RefreshTokenSecret: "refresh-secret",
	AccessTokenTTL:     time.Minute,
	RefreshTokenTTL:    time.Hour,
	BcryptCost:         4,
}

func newTestService() (*Service, *memoryStore) {
	store := newMemoryStore()
	return NewService(store, testAuthConfig), store
}

func TestRegisterSuccess(t *testing.T) {
	service, store := newTestService()
	result, err := service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})

	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if result.User.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped from response")
	}

	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued")
	}

	if len(store.users) != 1 {
		t.Fatalf("expected user stored; got %d", len(store.users))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newTestService()
	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("initial registration returned error: %v", err)
	}

	_, err = service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "AnotherPass2!",
	})

	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	service, _ := newTestService()
	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	result, err := service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})

	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}

	if result.Tokens.AccessToken == "" {
		t.Fatalf("expected access token")
	}
	if result.Tokens.RefreshToken == "" {
		t.Fatalf("expected refresh token")
	}
}

func TestLoginInvalidPassword(t *testing.T) {
	service, _ := newTestService()
	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	_, err = service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "WrongPass",
	})

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateAccessTokenRoundTrip(t *testing.T) {
	service, _ := newTestService()
	result, err := service.Register(context.Background(), RegisterInput{
		Email:    "Writer@Example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	claims, err := service.ValidateAccessToken(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("expected subject %s, got %s", result.User.ID, claims.UserID)
	}
	if claims.Email != "writer@example.com" {
		t.Fatalf("expected lower-cased email, got %q", claims.Email)
	}

	if _, err := service.ValidateAccessToken(result.Tokens.AccessToken + "x"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}

	service.nowFunc = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := service.ValidateAccessToken(result.Tokens.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	service, store := newTestService()
	result, err := service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if len(store.refreshTokens) != 1 {
		t.Fatalf("expected one refresh token, got %d", len(store.refreshTokens))
	}

	if err := service.Logout(context.Background(), result.User.ID, result.Tokens.RefreshToken); err != nil {
		t.Fatalf("logout returned error: %v", err)
	}
	if active := store.activeTokens(result.User.ID); active != 0 {
		t.Fatalf("expected refresh token revoked, %d still active", active)
	}
	if err := service.Logout(context.Background(), result.User.ID, result.Tokens.RefreshToken); err != nil {
		t.Fatalf("second logout should be a no-op, got %v", err)
	}

	if err := service.Logout(context.Background(), result.User.ID, " "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for blank token, got %v", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	service, store := newTestService()
	registered, err := service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	refreshed, err := service.Refresh(context.Background(), registered.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if refreshed.User.ID != registered.User.ID || refreshed.User.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", refreshed.User)
	}
	if refreshed.Tokens.RefreshToken == registered.Tokens.RefreshToken {
		t.Fatalf("expected a new refresh token")
	}
	if _, err := service.ValidateAccessToken(refreshed.Tokens.AccessToken); err != nil {
		t.Fatalf("new access token rejected: %v", err)
	}
	if active := store.activeTokens(registered.User.ID); active != 1 {
		t.Fatalf("expected only the rotated token active, got %d", active)
	}

	if _, err := service.Refresh(context.Background(), registered.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected reused token to be rejected, got %v", err)
	}
}

func TestRefreshRejectsRevokedExpiredAndUnknownTokens(t *testing.T) {
	service, _ := newTestService()
	first, err := service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	second, err := service.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}

	if err := service.Logout(context.Background(), first.User.ID, first.Tokens.RefreshToken); err != nil {
		t.Fatalf("logout returned error: %v", err)
	}
	if _, err := service.Refresh(context.Background(), first.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}

	for _, token := range []string{"", "not-issued"} {
		if _, err := service.Refresh(context.Background(), token); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("expected %q to be rejected, got %v", token, err)
		}
	}

	service.nowFunc = func() time.Time { return second.Tokens.RefreshTokenExpiry }
	if _, err := service.Refresh(context.Background(), second.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestListAndGetUsersStripHashes(t *testing.T) {
	service, _ := newTestService()
	registered, err := service.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "StrongPass1!",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	users, err := service.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if len(users) != 1 || users[0].PasswordHash != "" {
		t.Fatalf("expected one user without hash, got %+v", users)
	}

	user, err := service.GetUser(context.Background(), registered.User.ID)
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if user.PasswordHash != "" || user.Email != "user@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := service.GetUser(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUserPermissions(t *testing.T) {
	service, _ := newTestService()
	owner, err := service.Register(context.Background(), RegisterInput{Email: "owner@example.com", Password: "StrongPass1!"})
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}
	other, err := service.Register(context.Background(), RegisterInput{Email: "other@example.com", Password: "StrongPass1!"})
	if err != nil {
		t.Fatalf("register other: %v", err)
	}

	name := "  Owner  "
	updated, err := service.UpdateUser(context.Background(), Actor{ID: owner.User.ID}, owner.User.ID, UpdateUserInput{DisplayName: &name})
	if err != nil {
		t.Fatalf("self update returned error: %v", err)
	}
	if updated.DisplayName == nil || *updated.DisplayName != "Owner" {
		t.Fatalf("expected trimmed display name, got %v", updated.DisplayName)
	}

	if _, err := service.UpdateUser(context.Background(), Actor{ID: other.User.ID}, owner.User.ID, UpdateUserInput{DisplayName: &name}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	password := "NewStrongPass2!"
	if _, err := service.UpdateUser(context.Background(), Actor{ID: other.User.ID, IsAdmin: true}, owner.User.ID, UpdateUserInput{Password: &password}); err != nil {
		t.Fatalf("admin update returned error: %v", err)
	}
	if _, err := service.Login(context.Background(), LoginInput{Email: "owner@example.com", Password: password}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	short := "short"
	if _, err := service.UpdateUser(context.Background(), Actor{ID: owner.User.ID}, owner.User.ID, UpdateUserInput{Password: &short}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	missing := uuid.New()
	if _, err := service.UpdateUser(context.Background(), Actor{ID: missing}, missing, UpdateUserInput{DisplayName: &name}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// memoryStore implements userStore for tests.
type memoryStore struct {
	users         map[string]User
	refreshTokens map[string]RefreshToken
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[string]User),
		refreshTokens: make(map[string]RefreshToken),
	}
}

func (m *memoryStore) activeTokens(userID uuid.UUID) int {
	n := 0
	for _, token := range m.refreshTokens {
		if token.UserID == userID && token.RevokedAt == nil {
			n++
		}
	}
	return n
}

func (m *memoryStore) CreateUser(ctx context.Context, email, passwordHash string, displayName *string) (User, error) {
	if _, ok := m.users[email]; ok {
		return User{}, ErrEmailAlreadyExists
	}
	user := User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[email] = user
	return user, nil
}

func (m *memoryStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	user, ok := m.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *memoryStore) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	m.refreshTokens[tokenHash] = RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (m *memoryStore) FindRefreshToken(ctx context.Context, tokenHash string) (RefreshToken, error) {
	token, ok := m.refreshTokens[tokenHash]
	if !ok {
		return RefreshToken{}, ErrInvalidRefreshToken
	}
	return token, nil
}

func (m *memoryStore) RevokeToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	token, ok := m.refreshTokens[tokenHash]
	if !ok || token.UserID != userID || token.RevokedAt != nil {
		return ErrInvalidRefreshToken
	}
	now := time.Now()
	token.RevokedAt = &now
	m.refreshTokens[tokenHash] = token
	return nil
}

func (m *memoryStore) ListUsers(ctx context.Context) ([]User, error) {
	users := make([]User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *memoryStore) FindUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *memoryStore) UpdateUser(ctx context.Context, id uuid.UUID, displayName, passwordHash *string) (User, error) {
	user, err := m.FindUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if displayName != nil {
		user.DisplayName = displayName
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	user.UpdatedAt = time.Now()
	m.users[user.Email] = user
	return user, nil
}
