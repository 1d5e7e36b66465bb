// Package cryptox provides the cryptographic helpers used by the
// authentication core: slow salted password hashing and opaque session
// token generation.
package cryptox

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinHashCost is the lowest accepted bcrypt cost factor. Anything below it
// is too cheap to throttle offline brute force.
const MinHashCost = 10

// dummyPassword feeds the precomputed hash used to equalize timing when a
// username does not exist. Its value is irrelevant; it never matches input
// because the comparison result is discarded.
const dummyPassword = "blogauth-dummy-credential"

// Hasher wraps bcrypt with a fixed cost factor.
type Hasher struct {
	cost      int
	dummyHash []byte
}

// NewHasher constructs a Hasher. Costs below MinHashCost are raised to it,
// so a misconfigured deployment can never weaken hashing silently.
func NewHasher(cost int) (*Hasher, error) {
	if cost < MinHashCost {
		cost = MinHashCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("error precomputing dummy hash: %w", err)
	}
	return &Hasher{cost: cost, dummyHash: dummy}, nil
}

// Hash returns the bcrypt hash of password at the configured cost.
func (h *Hasher) Hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: %w", err)
	}
	return hash, nil
}

// Compare reports whether password matches hash. bcrypt performs its own
// constant-time digest comparison internally.
func (h *Hasher) Compare(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// CompareDummy burns the same bcrypt cost as Compare without a real hash.
// Called on the unknown-username path so it is indistinguishable, in time,
// from a wrong password.
func (h *Hasher) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}
