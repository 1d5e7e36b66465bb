package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/blogauth/internal/timex"
)

// LockoutGuard applies a long cooldown after a run of consecutive failures.
// It is a separate policy from the rate limiter: the limiter throttles raw
// attempt rate regardless of outcome, the guard punishes failure streaks.
type LockoutGuard struct {
	attempts  attempts.Repository
	clock     timex.Clock
	threshold int
	duration  time.Duration
}

func NewLockoutGuard(repo attempts.Repository, clock timex.Clock, threshold int, duration time.Duration) *LockoutGuard {
	return &LockoutGuard{attempts: repo, clock: clock, threshold: threshold, duration: duration}
}

// IsLocked reports whether the identity is currently locked out and, if so,
// when the lock lifts. An elapsed lock reads as unlocked.
func (g *LockoutGuard) IsLocked(ctx context.Context, identity string) (bool, time.Time, error) {
	until, err := g.attempts.LockedUntil(ctx, identity)
	if err != nil {
		return false, time.Time{}, common.ErrStoreUnavailable
	}
	if !until.IsZero() && g.clock.Now().Before(until) {
		return true, until, nil
	}
	return false, time.Time{}, nil
}

// RecordFailure extends the failure streak. Reaching the threshold sets the
// lock and clears the streak, so a failure after the lock elapses starts a
// fresh cycle from zero.
func (g *LockoutGuard) RecordFailure(ctx context.Context, identity string) error {
	now := g.clock.Now()
	count, err := g.attempts.RecordFailure(ctx, identity, now)
	if err != nil {
		return common.ErrStoreUnavailable
	}
	if count >= g.threshold {
		if err := g.attempts.Lock(ctx, identity, now, now.Add(g.duration)); err != nil {
			return common.ErrStoreUnavailable
		}
	}
	return nil
}

// RecordSuccess clears the failure streak and any lock.
func (g *LockoutGuard) RecordSuccess(ctx context.Context, identity string) error {
	if err := g.attempts.Reset(ctx, identity); err != nil {
		return common.ErrStoreUnavailable
	}
	return nil
}
