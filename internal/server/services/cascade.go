package services

import (
	"context"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/sessions"
)

// Cascade revokes every session of a deleted user. It runs synchronously
// inside the deletion path so a session referencing a dead user can never
// validate afterwards.
type Cascade struct {
	sessions sessions.Repository
}

func NewCascade(repo sessions.Repository) *Cascade {
	return &Cascade{sessions: repo}
}

// OnUserDeleted bulk-deletes the user's sessions and repeats until a pass
// removes nothing. The re-check closes the race with a login that slips in
// a new session while the first pass runs: the cascade is the last writer.
func (c *Cascade) OnUserDeleted(ctx context.Context, userID string) error {
	for {
		n, err := c.sessions.DeleteAllForUser(ctx, userID)
		if err != nil {
			return common.ErrStoreUnavailable
		}
		if n == 0 {
			return nil
		}
	}
}
