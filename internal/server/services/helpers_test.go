package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/cryptox"
	"github.com/dmitrijs2005/blogauth/internal/server/models"
)

// --- shared test helpers ---

// fakeClock is an advanceable clock so expiry and window boundaries can be
// tested without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeUsersRepo serves a fixed set of users and counts lookups so tests can
// assert how many attempts actually reached the credential check.
type fakeUsersRepo struct {
	mu      sync.Mutex
	byName  map[string]*models.User
	getErr  error
	delErr  error
	lookups int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byName[u.Username] = u
}

func (f *fakeUsersRepo) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = "user-" + u.Username
	}
	f.byName[u.Username] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	for name, u := range f.byName {
		if u.ID == userID {
			delete(f.byName, name)
		}
	}
	return nil
}

// testHasher is shared across the package's tests because bcrypt at the
// minimum cost is still slow enough that one hasher per test adds up.
var (
	testHasherOnce sync.Once
	testHasher     *cryptox.Hasher
)

func newTestHasher(t *testing.T) *cryptox.Hasher {
	t.Helper()
	testHasherOnce.Do(func() {
		h, err := cryptox.NewHasher(cryptox.MinHashCost)
		if err != nil {
			t.Fatalf("NewHasher error: %v", err)
		}
		testHasher = h
	})
	if testHasher == nil {
		t.Fatal("hasher initialization failed")
	}
	return testHasher
}
