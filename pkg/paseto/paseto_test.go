package pasetotoken

import (
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(Config{
		Issuer:    "mediq",
		Audience:  "mediq-clients",
		AccessTTL: time.Minute,
	}, NewKeyHex())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)

	tok, err := m.Issue("doctor", 42, "sess-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Role != "doctor" {
		t.Errorf("Role = %q, want %q", claims.Role, "doctor")
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want %q", claims.SessionID, "sess-1")
	}
	if claims.TokenID == "" {
		t.Error("TokenID empty")
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Error("token already expired")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	m := newTestManager(t)
	other := newTestManager(t)

	tok, err := m.Issue("patient", 7, "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Verify(tok); err == nil {
		t.Fatal("expected verify failure under a different key")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Verify("v4.local.not-a-token"); err == nil {
		t.Fatal("expected verify failure")
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{Audience: "a"}, NewKeyHex()); err == nil {
		t.Error("expected error for missing issuer")
	}
	if _, err := New(Config{Issuer: "i"}, NewKeyHex()); err == nil {
		t.Error("expected error for missing audience")
	}
	if _, err := New(Config{Issuer: "i", Audience: "a"}, "zz"); err == nil {
		t.Error("expected error for bad key hex")
	}
}
