// Package users declares the read contract this subsystem has with the
// user table owned by the external content store. Create exists so tests
// and seeding can provision users without that store.
package users

import (
	"context"

	"github.com/dmitrijs2005/blogauth/internal/server/models"
)

type Repository interface {
	// Create inserts a new user and returns it with its generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername looks a user up by exact username match.
	// Returns common.ErrNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Delete removes a user by id. The cascade coordinator is responsible
	// for invalidating the user's sessions as part of the same operation.
	Delete(ctx context.Context, userID string) error
}
