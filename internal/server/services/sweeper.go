package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/logging"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/blogauth/internal/timex"
)

// attemptRetention bounds how long idle attempt state is kept before the
// sweeper drops it.
const attemptRetention = 24 * time.Hour

// Sweeper periodically removes expired session rows and stale attempt
// state. Pure storage hygiene: validation already treats expired rows as
// absent, so correctness never depends on a sweep having run.
type Sweeper struct {
	sessions sessions.Repository
	attempts attempts.Repository
	clock    timex.Clock
	interval time.Duration
	logger   logging.Logger
}

func NewSweeper(sessionRepo sessions.Repository, attemptRepo attempts.Repository, clock timex.Clock, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		sessions: sessionRepo,
		attempts: attemptRepo,
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on the configured interval until ctx is cancelled. A
// non-positive interval disables sweeping entirely.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := s.clock.Now()

	n, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error(ctx, "expired session sweep failed", "error", err)
	} else if n > 0 {
		s.logger.Debug(ctx, "expired sessions removed", "count", n)
	}

	if err := s.attempts.Evict(ctx, now.Add(-attemptRetention)); err != nil {
		s.logger.Error(ctx, "attempt state eviction failed", "error", err)
	}
}
