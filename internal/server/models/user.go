package models

import "time"

// User mirrors the record owned by the external content store. This
// subsystem reads it and never mutates it; PasswordHash is never
// serialized outward.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
