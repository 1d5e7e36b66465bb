package cryptox

import (
	"encoding/base64"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher_RaisesLowCost(t *testing.T) {
	h, err := NewHasher(1)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	if h.cost != MinHashCost {
		t.Fatalf("expected cost %d, got %d", MinHashCost, h.cost)
	}
}

func TestHashAndCompare(t *testing.T) {
	h := &Hasher{cost: bcrypt.MinCost}

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !h.Compare(hash, "s3cret") {
		t.Fatalf("expected match for correct password")
	}
	if h.Compare(hash, "wrong") {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestCompareDummy_DoesNotPanic(t *testing.T) {
	h, err := NewHasher(MinHashCost)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	h.CompareDummy("anything")
}

func TestNewSessionToken_UniqueAndOpaque(t *testing.T) {
	a, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken error: %v", err)
	}
	b, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken error: %v", err)
	}
	if a == b {
		t.Fatalf("two tokens should never collide")
	}
	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != sessionTokenBytes {
		t.Fatalf("expected %d token bytes, got %d", sessionTokenBytes, len(raw))
	}
}
