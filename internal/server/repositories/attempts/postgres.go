package attempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/dbx"
)

// PostgresRepository keeps attempt state in the login_attempts table.
// Atomicity comes from single-statement upserts: the window rollover and
// the increment happen inside one INSERT ... ON CONFLICT, so concurrent
// attempts for the same identity serialize on the row.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) RecordAttempt(ctx context.Context, identity string, now time.Time, window time.Duration) (int, time.Time, error) {
	query := `
		INSERT INTO login_attempts (identity, window_start, attempt_count, consecutive_failures)
		VALUES ($1, $2, 1, 0)
		ON CONFLICT (identity) DO UPDATE SET
		    attempt_count = CASE
		        WHEN login_attempts.window_start IS NULL OR login_attempts.window_start <= $3
		        THEN 1
		        ELSE login_attempts.attempt_count + 1
		    END,
		    window_start = CASE
		        WHEN login_attempts.window_start IS NULL OR login_attempts.window_start <= $3
		        THEN $2
		        ELSE login_attempts.window_start
		    END
		RETURNING attempt_count, window_start
	`
	var count int
	var windowStart time.Time
	err := r.db.QueryRowContext(ctx, query, identity, now, now.Add(-window)).
		Scan(&count, &windowStart)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("db error: %w", err)
	}
	return count, windowStart, nil
}

func (r *PostgresRepository) RecordFailure(ctx context.Context, identity string, now time.Time) (int, error) {
	query := `
		INSERT INTO login_attempts (identity, attempt_count, consecutive_failures)
		VALUES ($1, 0, 1)
		ON CONFLICT (identity) DO UPDATE SET
		    consecutive_failures = login_attempts.consecutive_failures + 1
		RETURNING consecutive_failures
	`
	var failures int
	if err := r.db.QueryRowContext(ctx, query, identity).Scan(&failures); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return failures, nil
}

func (r *PostgresRepository) Lock(ctx context.Context, identity string, now, until time.Time) error {
	query := `
		INSERT INTO login_attempts (identity, attempt_count, consecutive_failures, locked_until)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (identity) DO UPDATE SET
		    locked_until = $2,
		    consecutive_failures = 0
	`
	if _, err := r.db.ExecContext(ctx, query, identity, until); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LockedUntil(ctx context.Context, identity string) (time.Time, error) {
	query := `
		SELECT locked_until FROM login_attempts
		WHERE identity = $1
	`
	var lockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, query, identity).Scan(&lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}
	if !lockedUntil.Valid {
		return time.Time{}, nil
	}
	return lockedUntil.Time, nil
}

func (r *PostgresRepository) Reset(ctx context.Context, identity string) error {
	query := `
		UPDATE login_attempts
		SET consecutive_failures = 0, locked_until = NULL
		WHERE identity = $1
	`
	if _, err := r.db.ExecContext(ctx, query, identity); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Evict(ctx context.Context, cutoff time.Time) error {
	query := `
		DELETE FROM login_attempts
		WHERE (window_start IS NULL OR window_start < $1)
		  AND (locked_until IS NULL OR locked_until < $1)
	`
	if _, err := r.db.ExecContext(ctx, query, cutoff); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
