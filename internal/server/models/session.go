package models

import "time"

// Session is a server-issued, time-bounded proof of authentication. ID is
// the opaque token handed to the caller; it is the only secret, so rows
// never leave this subsystem.
//
// A session is valid iff it exists in the store and now < ExpiresAt; the
// boundary now == ExpiresAt counts as expired.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
