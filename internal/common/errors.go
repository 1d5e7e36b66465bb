// Package common defines shared sentinel errors used across the
// authentication core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Authentication outcomes. ErrInvalidCredentials covers both an unknown
	// username and a wrong password; callers must not be able to tell them
	// apart. ErrNoSession covers absent, expired, and revoked sessions alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no session")

	// Throttling outcomes. Hint payloads (retry-after, unlock time) are
	// carried by wrapper types in the services package.
	ErrRateLimited   = errors.New("rate limited")
	ErrAccountLocked = errors.New("account locked")

	// ErrSessionLimit is returned by the session store when a concurrent
	// session cap is configured with the reject policy and the cap is hit.
	ErrSessionLimit = errors.New("session limit reached")

	// ErrStoreUnavailable signals that the underlying persistence layer
	// failed. It is surfaced as a generic failure; callers fail closed.
	ErrStoreUnavailable = errors.New("store unavailable")
)
