package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/blogauth/internal/common"
)

func TestMemory_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository(Options{})
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s, err := repo.Create(ctx, "u-1", now, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.Equal(t, "u-1", s.UserID)
	require.True(t, s.ExpiresAt.Equal(now.Add(time.Hour)))

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s.ID, got.ID)
}

func TestMemory_GetAbsent(t *testing.T) {
	repo := NewMemoryRepository(Options{})

	_, err := repo.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository(Options{})
	ctx := context.Background()

	s, err := repo.Create(ctx, "u-1", time.Now(), time.Hour)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, s.ID))
	require.NoError(t, repo.Delete(ctx, s.ID))
	require.NoError(t, repo.Delete(ctx, "never-existed"))

	_, err = repo.Get(ctx, s.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_DeleteAllForUser(t *testing.T) {
	repo := NewMemoryRepository(Options{})
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, "u-1", now, time.Hour)
		require.NoError(t, err)
	}
	other, err := repo.Create(ctx, "u-2", now, time.Hour)
	require.NoError(t, err)

	n, err := repo.DeleteAllForUser(ctx, "u-1")
	require.NoError(t, err)
	require.EqualValues(t, 5, n)

	count, err := repo.CountForUser(ctx, "u-1")
	require.NoError(t, err)
	require.Zero(t, count)

	// Unrelated users are untouched.
	_, err = repo.Get(ctx, other.ID)
	require.NoError(t, err)

	n, err = repo.DeleteAllForUser(ctx, "u-1")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMemory_DeleteExpired_BoundaryIsExpired(t *testing.T) {
	repo := NewMemoryRepository(Options{})
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	atBoundary, err := repo.Create(ctx, "u-1", now, time.Minute)
	require.NoError(t, err)
	alive, err := repo.Create(ctx, "u-1", now, 2*time.Minute)
	require.NoError(t, err)

	n, err := repo.DeleteExpired(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = repo.Get(ctx, atBoundary.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = repo.Get(ctx, alive.ID)
	require.NoError(t, err)
}

func TestMemory_CapRejects(t *testing.T) {
	repo := NewMemoryRepository(Options{MaxPerUser: 2, CapPolicy: CapReject})
	ctx := context.Background()
	now := time.Now()

	_, err := repo.Create(ctx, "u-1", now, time.Hour)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u-1", now, time.Hour)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "u-1", now, time.Hour)
	require.ErrorIs(t, err, common.ErrSessionLimit)

	// A different user is unaffected by u-1's cap.
	_, err = repo.Create(ctx, "u-2", now, time.Hour)
	require.NoError(t, err)
}

func TestMemory_CapEvictsOldest(t *testing.T) {
	repo := NewMemoryRepository(Options{MaxPerUser: 2, CapPolicy: CapEvictOldest})
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	oldest, err := repo.Create(ctx, "u-1", base, time.Hour)
	require.NoError(t, err)
	middle, err := repo.Create(ctx, "u-1", base.Add(time.Minute), time.Hour)
	require.NoError(t, err)
	newest, err := repo.Create(ctx, "u-1", base.Add(2*time.Minute), time.Hour)
	require.NoError(t, err)

	_, err = repo.Get(ctx, oldest.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = repo.Get(ctx, middle.ID)
	require.NoError(t, err)
	_, err = repo.Get(ctx, newest.ID)
	require.NoError(t, err)
}

func TestMemory_CapHoldsUnderConcurrentCreates(t *testing.T) {
	const maxPerUser = 3
	repo := NewMemoryRepository(Options{MaxPerUser: maxPerUser, CapPolicy: CapEvictOldest})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, "u-1", time.Now().Add(time.Duration(i)*time.Millisecond), time.Hour)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := repo.CountForUser(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, maxPerUser, count)
}

func TestMemory_ConcurrentSessionsAreIndependent(t *testing.T) {
	repo := NewMemoryRepository(Options{})
	ctx := context.Background()
	now := time.Now()

	const k = 8
	ids := make([]string, 0, k)
	for i := 0; i < k; i++ {
		s, err := repo.Create(ctx, "u-1", now, time.Hour)
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	// Deleting one leaves the others intact.
	require.NoError(t, repo.Delete(ctx, ids[0]))
	for _, id := range ids[1:] {
		_, err := repo.Get(ctx, id)
		require.NoError(t, err)
	}

	var errNotFound = common.ErrNotFound
	_, err := repo.Get(ctx, ids[0])
	require.True(t, errors.Is(err, errNotFound))
}
