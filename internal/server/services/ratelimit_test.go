package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/attempts"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(attempts.NewMemoryRepository(), clock, time.Minute, 3)

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(context.Background(), "alice")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be admitted", i+1)
	}

	ok, retryAfter, err := l.Allow(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(attempts.NewMemoryRepository(), clock, time.Minute, 1)

	ok, _, err := l.Allow(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, err = l.Allow(context.Background(), "alice")
	require.NoError(t, err)
	require.False(t, ok)

	clock.Advance(time.Minute)

	ok, _, err = l.Allow(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok, "a new window should admit again")
}

func TestRateLimiter_RetryAfterShrinksAsWindowAges(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(attempts.NewMemoryRepository(), clock, time.Minute, 1)

	ok, _, err := l.Allow(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(45 * time.Second)

	ok, retryAfter, err := l.Allow(context.Background(), "alice")
	require.NoError(t, err)
	require.False(t, ok)
	assert.Equal(t, 15*time.Second, retryAfter)
}

func TestRateLimiter_IdentitiesIndependent(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(attempts.NewMemoryRepository(), clock, time.Minute, 1)

	ok, _, err := l.Allow(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)

	ok, _, err = l.Allow(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, ok, "bob's window is not affected by alice's attempts")
}

func TestRateLimiter_RecordAttemptCounts(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(attempts.NewMemoryRepository(), clock, time.Minute, 2)

	require.NoError(t, l.RecordAttempt(context.Background(), "alice"))
	require.NoError(t, l.RecordAttempt(context.Background(), "alice"))

	// Both recorded attempts count against the window.
	ok, _, err := l.Allow(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

type erroringAttemptsRepo struct{}

func (erroringAttemptsRepo) RecordAttempt(context.Context, string, time.Time, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("down")
}
func (erroringAttemptsRepo) RecordFailure(context.Context, string, time.Time) (int, error) {
	return 0, errors.New("down")
}
func (erroringAttemptsRepo) Lock(context.Context, string, time.Time, time.Time) error {
	return errors.New("down")
}
func (erroringAttemptsRepo) LockedUntil(context.Context, string) (time.Time, error) {
	return time.Time{}, errors.New("down")
}
func (erroringAttemptsRepo) Reset(context.Context, string) error    { return errors.New("down") }
func (erroringAttemptsRepo) Evict(context.Context, time.Time) error { return errors.New("down") }

func TestRateLimiter_StoreErrorFailsClosed(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(erroringAttemptsRepo{}, clock, time.Minute, 3)

	ok, _, err := l.Allow(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.False(t, ok)
}
