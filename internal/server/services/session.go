package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/server/models"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/blogauth/internal/timex"
)

// MaxSessionLifetime caps the configured session lifetime. Sessions never
// outlive it regardless of configuration.
const MaxSessionLifetime = 7 * 24 * time.Hour

// AuthenticatedUser is what a validated session proves: the identity of the
// user who logged in.
type AuthenticatedUser struct {
	UserID string
}

// Manager drives the session lifecycle. A session is Active while it exists
// and now < ExpiresAt, and indistinguishable from absent once expired or
// revoked. There is no way back: every login and every rotation mints a
// brand-new id.
type Manager struct {
	verifier *Verifier
	limiter  *RateLimiter
	guard    *LockoutGuard
	sessions sessions.Repository
	clock    timex.Clock
	lifetime time.Duration
}

// NewManager constructs a Manager. Lifetimes above MaxSessionLifetime are
// clamped to it.
func NewManager(verifier *Verifier, limiter *RateLimiter, guard *LockoutGuard, repo sessions.Repository, clock timex.Clock, lifetime time.Duration) *Manager {
	if lifetime <= 0 || lifetime > MaxSessionLifetime {
		lifetime = MaxSessionLifetime
	}
	return &Manager{
		verifier: verifier,
		limiter:  limiter,
		guard:    guard,
		sessions: repo,
		clock:    clock,
		lifetime: lifetime,
	}
}

// Login authenticates username/password and mints a session.
//
// Gate order: lockout first (AccountLockedError with the unlock time), then
// the rate limiter (RateLimitedError with a retry-after hint), then the
// credential check. A credential failure extends the lockout streak; a
// success clears it. The admission call already counted the attempt, so
// failures are not counted twice.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.Session, error) {
	locked, until, err := m.guard.IsLocked(ctx, username)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, &AccountLockedError{Until: until}
	}

	ok, retryAfter, err := m.limiter.Allow(ctx, username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	user, err := m.verifier.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			if ferr := m.guard.RecordFailure(ctx, username); ferr != nil {
				return nil, ferr
			}
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := m.guard.RecordSuccess(ctx, username); err != nil {
		return nil, err
	}

	return m.create(ctx, user.ID)
}

// Validate resolves a token to the user it authenticates. Absent, expired,
// and revoked sessions all read as common.ErrNoSession; the boundary
// now == ExpiresAt counts as expired. No side effects: expiry is absolute,
// validation never renews it.
func (m *Manager) Validate(ctx context.Context, token string) (*AuthenticatedUser, error) {
	session, err := m.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNoSession
		}
		return nil, common.ErrStoreUnavailable
	}
	if !m.clock.Now().Before(session.ExpiresAt) {
		return nil, common.ErrNoSession
	}
	return &AuthenticatedUser{UserID: session.UserID}, nil
}

// Logout revokes a session. Idempotent: an unknown or already-revoked token
// is not an error.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if err := m.sessions.Delete(ctx, token); err != nil {
		return common.ErrStoreUnavailable
	}
	return nil
}

// Rotate replaces a session after a privilege-sensitive event. The old
// token is deleted before the new session exists, so there is no window
// where both are valid.
func (m *Manager) Rotate(ctx context.Context, userID, oldToken string) (*models.Session, error) {
	if err := m.sessions.Delete(ctx, oldToken); err != nil {
		return nil, common.ErrStoreUnavailable
	}
	return m.create(ctx, userID)
}

func (m *Manager) create(ctx context.Context, userID string) (*models.Session, error) {
	session, err := m.sessions.Create(ctx, userID, m.clock.Now(), m.lifetime)
	if err != nil {
		if errors.Is(err, common.ErrSessionLimit) {
			return nil, err
		}
		return nil, common.ErrStoreUnavailable
	}
	return session, nil
}
