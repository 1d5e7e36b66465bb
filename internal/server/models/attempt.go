package models

import "time"

// AttemptRecord is the per-identity throttling state shared by the rate
// limiter (window bookkeeping) and the lockout guard (consecutive-failure
// bookkeeping). Identity is usually the username being tried.
type AttemptRecord struct {
	Identity string

	// Rate-limiting window.
	WindowStart  time.Time
	AttemptCount int

	// Lockout state. LockedUntil is zero while no lock is in force.
	ConsecutiveFailures int
	LockedUntil         time.Time
}
