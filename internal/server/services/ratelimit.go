package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/blogauth/internal/timex"
)

// RateLimiter throttles attempts per identity with a fixed window,
// independent of whether the attempts succeed or fail.
type RateLimiter struct {
	attempts attempts.Repository
	clock    timex.Clock
	window   time.Duration
	max      int
}

func NewRateLimiter(repo attempts.Repository, clock timex.Clock, window time.Duration, maxAttempts int) *RateLimiter {
	return &RateLimiter{attempts: repo, clock: clock, window: window, max: maxAttempts}
}

// Allow admits or rejects one attempt. The store rolls the window and
// increments the counter in a single atomic step, so out of any number of
// concurrent calls at most max per window are admitted. On rejection the
// returned duration says how long until the window resets.
func (l *RateLimiter) Allow(ctx context.Context, identity string) (bool, time.Duration, error) {
	now := l.clock.Now()
	count, windowStart, err := l.attempts.RecordAttempt(ctx, identity, now, l.window)
	if err != nil {
		return false, 0, common.ErrStoreUnavailable
	}
	if count > l.max {
		retryAfter := windowStart.Add(l.window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}
	return true, 0, nil
}

// RecordAttempt counts an attempt without an admission decision, for
// callers that gate elsewhere but still want the attempt on the books.
func (l *RateLimiter) RecordAttempt(ctx context.Context, identity string) error {
	if _, _, err := l.attempts.RecordAttempt(ctx, identity, l.clock.Now(), l.window); err != nil {
		return common.ErrStoreUnavailable
	}
	return nil
}
