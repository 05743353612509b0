package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	tok, err := GenerateToken(userID, "user@example.com", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(tok, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != userID || claims.Email != "user@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	tok, err := GenerateToken(uuid.New(), "user@example.com", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(tok, "other-secret"); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	tok, err := GenerateToken(uuid.New(), "user@example.com", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(tok, "secret"); err == nil {
		t.Fatal("expired token accepted")
	}
}
