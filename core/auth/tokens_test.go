package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenMintParseRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	raw, err := issuer.Mint("user-123", ScopeAccess, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := issuer.Parse(raw, ScopeAccess)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Scope != ScopeAccess {
		t.Fatalf("unexpected scope %q", claims.Scope)
	}
}

func TestTokenScopeMismatch(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	raw, err := issuer.Mint("user-123", ScopeRefresh, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := issuer.Parse(raw, ScopeAccess); !errors.Is(err, ErrTokenScope) {
		t.Fatalf("expected scope error, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	raw, err := issuer.Mint("user-123", ScopeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := issuer.Parse(raw, ScopeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token for expired claim, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	raw, err := NewTokenIssuer("secret-a").Mint("user-123", ScopeAccess, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := NewTokenIssuer("secret-b").Parse(raw, ScopeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token for wrong secret, got %v", err)
	}
}
