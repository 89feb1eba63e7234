package store

import (
	"testing"
	"time"
)

func TestRefreshTokenAllowlist(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	now := time.Now()

	if err := s.RefreshTokens.Create("jti-1", alice.ID, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}

	rt, err := s.RefreshTokens.GetValid("jti-1", now)
	if err != nil {
		t.Fatalf("get valid: %v", err)
	}
	if rt == nil || rt.UserID != alice.ID {
		t.Fatalf("rt = %+v, want entry for user %d", rt, alice.ID)
	}

	if err := s.RefreshTokens.Delete("jti-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rt, _ = s.RefreshTokens.GetValid("jti-1", now)
	if rt != nil {
		t.Error("expected token to be revoked")
	}
}

func TestRefreshTokenDeleteExpired(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	now := time.Now()

	s.RefreshTokens.Create("old", alice.ID, now.Add(-time.Hour))
	s.RefreshTokens.Create("fresh", alice.ID, now.Add(time.Hour))

	n, err := s.RefreshTokens.DeleteExpired(now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	rt, _ := s.RefreshTokens.GetValid("fresh", now)
	if rt == nil {
		t.Error("expected fresh token to survive")
	}
}
