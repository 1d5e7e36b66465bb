// Package repomanager wires together the repository implementations for a
// given storage backend and exposes the schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/blogauth/internal/dbx"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/blogauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context) error

	// Conn exposes the underlying handle for transactional flows.
	Conn() *sql.DB

	// Users returns a users.Repository bound to the provided DBTX, so it
	// can participate in an enclosing transaction.
	Users(db dbx.DBTX) users.Repository

	// Sessions returns the session store.
	Sessions() sessions.Repository

	// Attempts returns the attempt-record store.
	Attempts() attempts.Repository
}
