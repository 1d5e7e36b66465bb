// Package attempts stores the per-identity throttling state behind the
// rate limiter and the lockout guard. Every mutation is atomic with
// respect to concurrent attempts for the same identity; attempts for
// different identities are fully independent.
package attempts

import (
	"context"
	"time"
)

type Repository interface {
	// RecordAttempt rolls the identity's window forward when it has lapsed
	// and increments the attempt counter, all as one atomic step. It
	// returns the counter value after the increment and the start of the
	// current window, so two simultaneous attempts can never observe the
	// same pre-increment count.
	RecordAttempt(ctx context.Context, identity string, now time.Time, window time.Duration) (count int, windowStart time.Time, err error)

	// RecordFailure increments the consecutive-failure counter and returns
	// the new value.
	RecordFailure(ctx context.Context, identity string, now time.Time) (int, error)

	// Lock sets the lock deadline and clears the failure counter, so a
	// failure after the lock expires restarts the cycle from zero. The
	// lock's remaining time is measured as until minus the caller's now,
	// never against the wall clock.
	Lock(ctx context.Context, identity string, now, until time.Time) error

	// LockedUntil reports the identity's lock deadline; the zero time
	// means no lock was ever set (callers still compare against now).
	LockedUntil(ctx context.Context, identity string) (time.Time, error)

	// Reset clears the failure counter and any lock. Called on successful
	// authentication.
	Reset(ctx context.Context, identity string) error

	// Evict drops state whose window and lock both ended before cutoff.
	// Storage hygiene only.
	Evict(ctx context.Context, cutoff time.Time) error
}
