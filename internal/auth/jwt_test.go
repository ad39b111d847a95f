package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	InitJWT("test-secret-key")

	username := "admin"
	role := "admin"
	expireAt := time.Now().Add(time.Hour)

	token, err := GenerateToken(username, role, expireAt, "certhub")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if token == "" {
		t.Error("Expected non-empty token")
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}

	if claims.Username != username {
		t.Errorf("Expected username %s, got %s", username, claims.Username)
	}
	if claims.Role != role {
		t.Errorf("Expected role %s, got %s", role, claims.Role)
	}
	if claims.Issuer != "certhub" {
		t.Errorf("Expected issuer certhub, got %s", claims.Issuer)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	InitJWT("test-secret-key")

	if _, err := ParseToken("invalid.token.string"); err == nil {
		t.Error("ParseToken() should fail for invalid token")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	InitJWT("test-secret-key")

	token, err := GenerateToken("admin", "admin", time.Now().Add(-time.Hour), "certhub")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken() should fail for expired token")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	InitJWT("secret-1")
	token, err := GenerateToken("admin", "admin", time.Now().Add(time.Hour), "certhub")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	InitJWT("secret-2")
	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken() should fail when the secret changes")
	}
}
