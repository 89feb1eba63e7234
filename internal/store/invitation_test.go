package store

import (
	"errors"
	"testing"
	"time"
)

func TestInvitationCreateAndGetValid(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)
	now := time.Now()

	inv, err := s.Invitations.Create(w.ID, "carol@example.com", "tok-1", now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("create invitation: %v", err)
	}
	if inv.Email != "carol@example.com" {
		t.Errorf("email = %q, want %q", inv.Email, "carol@example.com")
	}

	got, err := s.Invitations.GetValid("tok-1", "carol@example.com", now)
	if err != nil {
		t.Fatalf("get valid: %v", err)
	}
	if got == nil || got.ID != inv.ID {
		t.Fatalf("got = %+v, want invitation %d", got, inv.ID)
	}

	wrongEmail, _ := s.Invitations.GetValid("tok-1", "mallory@example.com", now)
	if wrongEmail != nil {
		t.Error("expected nil for mismatched email")
	}
}

func TestInvitationExpired(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)
	now := time.Now()

	s.Invitations.Create(w.ID, "carol@example.com", "tok-1", now.Add(-time.Minute))

	got, err := s.Invitations.GetValid("tok-1", "carol@example.com", now)
	if err != nil {
		t.Fatalf("get valid: %v", err)
	}
	if got != nil {
		t.Error("expected expired invitation to be invalid")
	}

	stale, _ := s.Invitations.GetByWishlistAndEmail(w.ID, "carol@example.com")
	if stale == nil {
		t.Error("expected expired row to still be stored")
	}
}

func TestInvitationUniquePerWishlistEmail(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)
	exp := time.Now().Add(time.Hour)

	s.Invitations.Create(w.ID, "carol@example.com", "tok-1", exp)
	_, err := s.Invitations.Create(w.ID, "carol@example.com", "tok-2", exp)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestInvitationDelete(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)
	inv, _ := s.Invitations.Create(w.ID, "carol@example.com", "tok-1", time.Now().Add(time.Hour))

	if err := s.Invitations.Delete(inv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n := countRows(t, s, `SELECT COUNT(*) FROM invitations WHERE wishlist_id = ?`, w.ID)
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestInvitationEmailIgnoresCase(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)
	now := time.Now()

	if _, err := s.Invitations.Create(w.ID, "carol@example.com", "tok-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("create invitation: %v", err)
	}

	got, err := s.Invitations.GetByWishlistAndEmail(w.ID, "Carol@Example.COM")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected a case-insensitive match")
	}

	_, err = s.Invitations.Create(w.ID, "CAROL@example.com", "tok-2", now.Add(time.Hour))
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}
