// Package sessions implements the durable session table: issuing opaque
// session ids, lookups, and the various deletion paths (logout, cascade,
// expiry sweep).
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/server/models"
)

// CapPolicy decides what happens when a concurrent-session cap is hit.
type CapPolicy string

const (
	// CapEvictOldest silently drops the user's oldest session to make room.
	CapEvictOldest CapPolicy = "evict-oldest"
	// CapReject refuses the new session with common.ErrSessionLimit.
	CapReject CapPolicy = "reject"
)

// Options configures per-user session capping. MaxPerUser == 0 disables
// the cap entirely.
type Options struct {
	MaxPerUser int
	CapPolicy  CapPolicy
}

// Repository is the session store contract.
//
// Expiry is the caller's concern: Get returns the stored row whether or not
// it has expired, so the manager can compare against its injected clock.
type Repository interface {
	// Create mints a session with a fresh unguessable id and
	// expires_at = now + lifetime. Id collisions are detected via the
	// primary key and retried with a new id, never overwritten. When a cap
	// is configured it is enforced atomically inside this call.
	Create(ctx context.Context, userID string, now time.Time, lifetime time.Duration) (*models.Session, error)

	// Get returns the session row or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Session, error)

	// Delete removes a session. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteAllForUser removes every session owned by userID and reports
	// how many rows went away. Idempotent.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired removes sessions with expires_at <= now. Storage
	// hygiene only; correctness never depends on it running.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// CountForUser reports the number of stored sessions for userID,
	// expired rows included.
	CountForUser(ctx context.Context, userID string) (int, error)
}
