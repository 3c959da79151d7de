package api

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func signToken(t *testing.T, claims tokenClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}
	return signed
}

func TestParseTokenClaims(t *testing.T) {
	token := signToken(t, tokenClaims{
		Name: "Alice",
		Role: "student",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	info, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if info.UserID != "u1" || info.Name != "Alice" || info.Role != "student" {
		t.Fatalf("info = %+v", info)
	}
	if info.ExpiresAt.IsZero() {
		t.Fatalf("expiry not captured")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token := signToken(t, tokenClaims{
		Name: "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	info, err := ParseToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("ParseToken = %v, want ErrTokenExpired", err)
	}
	// Identity claims still come back so callers can name who needs to log in.
	if info.Name != "Alice" {
		t.Fatalf("info = %+v", info)
	}
}

func TestParseTokenNoExpiry(t *testing.T) {
	token := signToken(t, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u2"},
	})

	info, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if info.UserID != "u2" || !info.ExpiresAt.IsZero() {
		t.Fatalf("info = %+v", info)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
