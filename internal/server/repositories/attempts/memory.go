package attempts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/server/models"
)

// MemoryRepository keeps attempt state in a mutex-guarded map. The single
// lock makes every read-modify-write atomic, which is exactly the contract;
// the critical sections are a few map operations, so contention is not a
// concern at login rates.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]*models.AttemptRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*models.AttemptRecord)}
}

func (r *MemoryRepository) RecordAttempt(ctx context.Context, identity string, now time.Time, window time.Duration) (int, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.getLocked(identity)
	if rec.WindowStart.IsZero() || !now.Before(rec.WindowStart.Add(window)) {
		rec.WindowStart = now
		rec.AttemptCount = 0
	}
	rec.AttemptCount++
	return rec.AttemptCount, rec.WindowStart, nil
}

func (r *MemoryRepository) RecordFailure(ctx context.Context, identity string, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.getLocked(identity)
	rec.ConsecutiveFailures++
	return rec.ConsecutiveFailures, nil
}

func (r *MemoryRepository) Lock(ctx context.Context, identity string, now, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.getLocked(identity)
	rec.LockedUntil = until
	rec.ConsecutiveFailures = 0
	return nil
}

func (r *MemoryRepository) LockedUntil(ctx context.Context, identity string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[identity]
	if !ok {
		return time.Time{}, nil
	}
	return rec.LockedUntil, nil
}

func (r *MemoryRepository) Reset(ctx context.Context, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[identity]
	if !ok {
		return nil
	}
	rec.ConsecutiveFailures = 0
	rec.LockedUntil = time.Time{}
	return nil
}

func (r *MemoryRepository) Evict(ctx context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for identity, rec := range r.records {
		if rec.WindowStart.Before(cutoff) && rec.LockedUntil.Before(cutoff) {
			delete(r.records, identity)
		}
	}
	return nil
}

func (r *MemoryRepository) getLocked(identity string) *models.AttemptRecord {
	rec, ok := r.records[identity]
	if !ok {
		rec = &models.AttemptRecord{Identity: identity}
		r.records[identity] = rec
	}
	return rec
}

var _ Repository = (*MemoryRepository)(nil)
