package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerifySession(t *testing.T) {
	m, err := NewManager("test-secret")
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	tok, err := m.SignSession("sid-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SignSession error: %v", err)
	}

	sid, err := m.VerifySession(tok)
	if err != nil {
		t.Fatalf("VerifySession error: %v", err)
	}
	if sid != "sid-1" {
		t.Fatalf("sid = %q, want sid-1", sid)
	}
}

func TestVerifySession_Rejects(t *testing.T) {
	m, _ := NewManager("test-secret")
	other, _ := NewManager("other-secret")

	expired, _ := m.SignSession("sid", time.Now().Add(-time.Minute))
	foreign, _ := other.SignSession("sid", time.Now().Add(time.Hour))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		SessionID: "sid",
		TokenType: tokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	wrongType := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: "sid",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	typed, _ := wrongType.SignedString([]byte("test-secret"))

	tests := map[string]string{
		"garbage":    "not-a-token",
		"empty":      "",
		"expired":    expired,
		"foreign":    foreign,
		"alg none":   unsigned,
		"wrong type": typed,
	}

	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.VerifySession(tok); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewManager_EmptySecret(t *testing.T) {
	if _, err := NewManager(""); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}
