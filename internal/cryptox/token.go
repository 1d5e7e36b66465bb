package cryptox

import (
	"crypto/rand"
	"encoding/base64"
)

// sessionTokenBytes is the entropy of a session token. 32 bytes = 256 bits,
// well past the point where collisions or guessing are a concern.
const sessionTokenBytes = 32

// NewSessionToken generates an unguessable opaque session token.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
