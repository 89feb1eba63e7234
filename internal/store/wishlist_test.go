package store

import (
	"testing"
)

func TestWishlistCreate(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")

	w, err := s.Wishlists.Create("Birthday", "turning 30", alice.ID)
	if err != nil {
		t.Fatalf("create wishlist: %v", err)
	}
	if w.Name != "Birthday" {
		t.Errorf("name = %q, want %q", w.Name, "Birthday")
	}
	if w.AuthorUsername != "alice" {
		t.Errorf("author = %q, want %q", w.AuthorUsername, "alice")
	}
	if w.IsClosed {
		t.Error("expected new wishlist to be open")
	}
}

func TestWishlistGetNotFound(t *testing.T) {
	s := setupTestStores(t)

	w, err := s.Wishlists.GetByID(42)
	if err != nil {
		t.Fatalf("get wishlist: %v", err)
	}
	if w != nil {
		t.Errorf("expected nil, got %+v", w)
	}
}

func TestWishlistAddMemberIdempotent(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)

	first, err := s.Wishlists.AddMember(w.ID, bob.ID)
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	second, err := s.Wishlists.AddMember(w.ID, bob.ID)
	if err != nil {
		t.Fatalf("add member again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("membership id = %d, want %d", second.ID, first.ID)
	}

	members, err := s.Wishlists.Members(w.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("len(members) = %d, want 1", len(members))
	}
}

func TestWishlistMembersOrder(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)
	s.Wishlists.AddMember(w.ID, alice.ID)
	s.Wishlists.AddMember(w.ID, bob.ID)

	members, err := s.Wishlists.Members(w.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(members))
	}
	if members[0].Username != "alice" || members[1].Username != "bob" {
		t.Errorf("members = %+v, want alice then bob", members)
	}
}

func TestWishlistListOpenForUser(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	open, _ := s.Wishlists.Create("Birthday", "", alice.ID)
	closed, _ := s.Wishlists.Create("Wedding", "", alice.ID)
	other, _ := s.Wishlists.Create("Bob's", "", bob.ID)
	s.Wishlists.AddMember(open.ID, alice.ID)
	s.Wishlists.AddMember(closed.ID, alice.ID)
	s.Wishlists.AddMember(other.ID, bob.ID)
	if err := s.Wishlists.SetClosed(closed.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	lists, err := s.Wishlists.ListOpenForUser(alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("len(lists) = %d, want 1", len(lists))
	}
	if lists[0].ID != open.ID {
		t.Errorf("id = %d, want %d", lists[0].ID, open.ID)
	}
	if lists[0].AuthorUsername != "alice" {
		t.Errorf("author = %q, want %q", lists[0].AuthorUsername, "alice")
	}
}

func TestWishlistDeleteWithMembersFails(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)
	if _, err := s.Wishlists.AddMember(w.ID, alice.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := s.Wishlists.Delete(w.ID); err == nil {
		t.Fatal("expected foreign key error deleting wishlist with members")
	}

	got, _ := s.Wishlists.GetByID(w.ID)
	if got == nil {
		t.Error("wishlist should still exist")
	}
}

func TestWishlistDeleteEmpty(t *testing.T) {
	s := setupTestStores(t)
	alice := mustUser(t, s, "alice")
	w, _ := s.Wishlists.Create("Birthday", "", alice.ID)

	if err := s.Wishlists.Delete(w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := s.Wishlists.GetByID(w.ID)
	if got != nil {
		t.Error("expected wishlist to be deleted")
	}
}
