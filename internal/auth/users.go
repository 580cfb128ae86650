package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UpdateUserInput carries the mutable profile fields. Nil fields are left unchanged.
type UpdateUserInput struct {
	DisplayName *string
	Password    *string
}

// Actor identifies the authenticated caller of a user operation.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

// ListUsers returns every registered user without password hashes.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i] = users[i].SafeUser()
	}
	return users, nil
}

// GetUser fetches a single user by identifier.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return user.SafeUser(), nil
}

// UpdateUser changes the display name or password of a user. Only the user
// themself or an admin may do so.
func (s *Service) UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, input UpdateUserInput) (User, error) {
	if actor.ID != id && !actor.IsAdmin {
		return User{}, ErrForbidden
	}

	var displayName, passwordHash *string
	if input.DisplayName != nil {
		trimmed := strings.TrimSpace(*input.DisplayName)
		displayName = &trimmed
	}
	if input.Password != nil {
		if !validPassword(*input.Password) {
			return User{}, ErrInvalidCredentials
		}
		hashed, err := hashPassword(*input.Password, s.cfg.BcryptCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = &hashed
	}

	user, err := s.store.UpdateUser(ctx, id, displayName, passwordHash)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return user.SafeUser(), nil
}
