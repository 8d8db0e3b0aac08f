package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, plain := range []string{"pw1", "correct horse battery staple", "ünïcødé", " "} {
		hash, err := h.HashPassword(plain)
		if err != nil {
			t.Fatalf("HashPassword(%q) error: %v", plain, err)
		}
		if hash == plain {
			t.Fatalf("hash must not equal the plaintext")
		}
		if !h.VerifyPassword(hash, plain) {
			t.Fatalf("VerifyPassword(hash(%q), %q) = false, want true", plain, plain)
		}
		if h.VerifyPassword(hash, plain+"x") {
			t.Fatalf("VerifyPassword accepted a different password for %q", plain)
		}
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.HashPassword("same")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	b, err := h.HashPassword("same")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct salted hashes")
	}
}

func TestNewHasher_DefaultsInvalidCost(t *testing.T) {
	h := NewHasher(0)
	if h.cost != PasswordCost {
		t.Fatalf("cost = %d, want %d", h.cost, PasswordCost)
	}
}

func TestHashPassword_ProductionCost(t *testing.T) {
	h := NewHasher(PasswordCost)

	hash, err := h.HashPassword("pw1")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost error: %v", err)
	}
	if cost != 12 {
		t.Fatalf("cost = %d, want 12", cost)
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if h.VerifyPassword("not-a-bcrypt-hash", "pw") {
		t.Fatalf("malformed hash must not verify")
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if _, err := h.HashPassword(strings.Repeat("a", 73)); err == nil {
		t.Fatalf("expected error for password longer than 72 bytes")
	}
}
