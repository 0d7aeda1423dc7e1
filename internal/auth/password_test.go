package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h, err := NewBcryptHasher(MinBcryptCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}

	first, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatalf("expected salted hashes to differ")
	}
	if first == "p1" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !h.Verify("p1", first) || !h.Verify("p1", second) {
		t.Fatalf("expected both hashes to verify")
	}
	if h.Verify("p2", first) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestBcryptHasher_MalformedHashIsFalse(t *testing.T) {
	h, err := NewBcryptHasher(MinBcryptCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		if h.Verify("p1", hash) {
			t.Fatalf("expected malformed hash %q to fail", hash)
		}
	}
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	h, err := NewBcryptHasher(4)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	hash, err := h.Hash("x")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != MinBcryptCost {
		t.Fatalf("expected cost raised to %d, got %d", MinBcryptCost, cost)
	}

	if _, err := NewBcryptHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatalf("expected error above max cost")
	}
}
