package security

import (
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken("secret", time.Hour, 42, "user@example.com", ScopeSession)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected uid=42, got %d", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("expected email preserved, got %q", claims.Email)
	}
	if claims.Scope != ScopeSession {
		t.Fatalf("expected scope=%q, got %q", ScopeSession, claims.Scope)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := IssueToken("secret", time.Hour, 1, "user@example.com", ScopeSession)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := IssueToken("secret", -time.Minute, 1, "user@example.com", ScopeSession)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatalf("expected mismatch to fail")
	}
}
