// Package services contains the authentication business logic: credential
// verification, attempt throttling, lockout, session lifecycle, and the
// user-deletion cascade.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/cryptox"
	"github.com/dmitrijs2005/blogauth/internal/server/models"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/users"
)

// Verifier checks a username/password pair against the user store.
//
// An unknown username and a wrong password are indistinguishable to the
// caller: both return common.ErrInvalidCredentials, and the unknown-username
// path burns a bcrypt comparison against a dummy hash so the two cannot be
// told apart by response time either.
type Verifier struct {
	users  users.Repository
	hasher *cryptox.Hasher
}

func NewVerifier(repo users.Repository, hasher *cryptox.Hasher) *Verifier {
	return &Verifier{users: repo, hasher: hasher}
}

// Verify returns the matching user on success. Store failures map to
// common.ErrStoreUnavailable; verification fails closed.
func (v *Verifier) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			v.hasher.CompareDummy(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrStoreUnavailable
	}
	if !v.hasher.Compare(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}
