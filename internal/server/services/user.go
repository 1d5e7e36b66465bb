package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/blogauth/internal/cryptox"
	"github.com/dmitrijs2005/blogauth/internal/server/models"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/users"
)

// UserService provisions and removes user records. The user table is owned
// by the content store in production; this service exists for seeding,
// tests, and for running the session cascade as part of user deletion.
type UserService struct {
	users   users.Repository
	hasher  *cryptox.Hasher
	cascade *Cascade
}

func NewUserService(repo users.Repository, hasher *cryptox.Hasher, cascade *Cascade) *UserService {
	return &UserService{users: repo, hasher: hasher, cascade: cascade}
}

// Register creates a user with a freshly hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user, err := s.users.Create(ctx, &models.User{Username: username, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Delete removes the user and, as part of the same logical operation,
// revokes every session the user still holds.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	return s.cascade.OnUserDeleted(ctx, userID)
}
