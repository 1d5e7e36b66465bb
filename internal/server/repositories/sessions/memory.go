package sessions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/cryptox"
	"github.com/dmitrijs2005/blogauth/internal/server/models"
)

// MemoryRepository is the in-memory twin of the Postgres store. All
// operations run under one mutex, which trivially gives the same
// atomicity guarantees (cap enforcement included). Used by tests and
// single-process deployments that can afford to lose sessions on restart.
type MemoryRepository struct {
	mu       sync.Mutex
	opts     Options
	sessions map[string]*models.Session
}

func NewMemoryRepository(opts Options) *MemoryRepository {
	return &MemoryRepository{
		opts:     opts,
		sessions: make(map[string]*models.Session),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, userID string, now time.Time, lifetime time.Duration) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var token string
	for i := 0; ; i++ {
		t, err := cryptox.NewSessionToken()
		if err != nil {
			return nil, fmt.Errorf("error generating session id: %w", err)
		}
		if _, exists := r.sessions[t]; !exists {
			token = t
			break
		}
		if i+1 >= createRetries {
			return nil, fmt.Errorf("session id collision persisted after %d attempts", createRetries)
		}
	}

	if r.opts.MaxPerUser > 0 {
		owned := r.ownedLocked(userID)
		if len(owned) >= r.opts.MaxPerUser {
			if r.opts.CapPolicy == CapReject {
				return nil, common.ErrSessionLimit
			}
			sort.Slice(owned, func(i, j int) bool {
				if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
					return owned[i].ID < owned[j].ID
				}
				return owned[i].CreatedAt.Before(owned[j].CreatedAt)
			})
			for _, s := range owned[:len(owned)-r.opts.MaxPerUser+1] {
				delete(r.sessions, s.ID)
			}
		}
	}

	session := &models.Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}
	r.sessions[token] = session

	copied := *session
	return &copied, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

func (r *MemoryRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.ownedLocked(userID)), nil
}

func (r *MemoryRepository) ownedLocked(userID string) []*models.Session {
	var owned []*models.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			owned = append(owned, s)
		}
	}
	return owned
}

var _ Repository = (*MemoryRepository)(nil)
