package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/common"
	"github.com/dmitrijs2005/blogauth/internal/cryptox"
	"github.com/dmitrijs2005/blogauth/internal/dbx"
	"github.com/dmitrijs2005/blogauth/internal/server/models"
)

// createRetries bounds the id-collision retry loop. With 256-bit ids a
// single retry is already astronomically unlikely.
const createRetries = 3

type PostgresRepository struct {
	db   *sql.DB
	opts Options
}

// NewPostgresRepository binds the repository to db. The *sql.DB (rather
// than a DBTX) is needed because Create opens its own transaction when a
// session cap has to be enforced atomically.
func NewPostgresRepository(db *sql.DB, opts Options) *PostgresRepository {
	return &PostgresRepository{db: db, opts: opts}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, now time.Time, lifetime time.Duration) (*models.Session, error) {

	var lastErr error
	for i := 0; i < createRetries; i++ {
		token, err := cryptox.NewSessionToken()
		if err != nil {
			return nil, fmt.Errorf("error generating session id: %w", err)
		}

		session := &models.Session{
			ID:        token,
			UserID:    userID,
			CreatedAt: now,
			ExpiresAt: now.Add(lifetime),
		}

		if r.opts.MaxPerUser > 0 {
			err = r.createCapped(ctx, session)
		} else {
			err = r.insert(ctx, r.db, session)
		}

		if err == nil {
			return session, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("session id collision persisted after %d attempts: %w", createRetries, lastErr)
}

// createCapped serializes concurrent creates for the same user with a
// per-user advisory lock, then applies the cap policy and inserts.
func (r *PostgresRepository) createCapped(ctx context.Context, session *models.Session) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, session.UserID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sessions WHERE user_id = $1`, session.UserID).Scan(&count)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		if count >= r.opts.MaxPerUser {
			if r.opts.CapPolicy == CapReject {
				return common.ErrSessionLimit
			}
			// Evict enough of the oldest sessions to leave room for one.
			evict := count - r.opts.MaxPerUser + 1
			_, err = tx.ExecContext(ctx,
				`DELETE FROM sessions
				 WHERE id IN (
				     SELECT id FROM sessions
				     WHERE user_id = $1
				     ORDER BY created_at ASC, id ASC
				     LIMIT $2
				 )`, session.UserID, evict)
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}

		return r.insert(ctx, tx, session)
	})
}

func (r *PostgresRepository) insert(ctx context.Context, db dbx.DBTX, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := db.ExecContext(ctx, query,
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt); err != nil {
		if isUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, user_id, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM sessions
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM sessions
		WHERE user_id = $1
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// isUniqueViolation detects a PostgreSQL unique constraint violation
// (SQLSTATE 23505) without importing pgconn directly.
func isUniqueViolation(err error) bool {
	type pgError interface{ SQLState() string }
	var pgErr pgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

var _ Repository = (*PostgresRepository)(nil)
