package handler

import (
	"fmt"
	"net/http"
	"testing"
)

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// setupItemTest returns a wishlist shared by alice and bob with one item
// listed by bob.
func setupItemTest(t *testing.T) (h testHandlers, alice, bob, listID, itemID int64) {
	t.Helper()
	h = setupHandlerTest(t)
	alice = h.user(t, "alice")
	bob = h.user(t, "bob")

	rec := do(t, "POST /wishlist", h.wishlists.Create, "POST", "/wishlist", alice, map[string]string{"title": "Birthday"})
	listID = int64(decode[map[string]any](t, rec)["id"].(float64))
	do(t, "POST /wishlist/{id}/invite", h.wishlists.Invite, "POST", pathf("/wishlist/%d/invite", listID), alice, map[string]string{"invitationMail": "bob@example.com"})

	rec = do(t, "POST /wishlist/{id}/item", h.items.Create, "POST", pathf("/wishlist/%d/item", listID), bob,
		map[string]string{"name": "Bike", "url": "https://shop.test/bike"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item status = %d, body %s", rec.Code, rec.Body.String())
	}
	itemID = int64(decode[map[string]any](t, rec)["id"].(float64))
	return h, alice, bob, listID, itemID
}

func TestReserveAndUnreserve(t *testing.T) {
	h, alice, bob, _, itemID := setupItemTest(t)

	rec := do(t, "POST /reservation", h.items.Reserve, "POST", "/reservation", alice,
		map[string]any{"item_id": itemID, "reservingUser_id": bob})
	if rec.Code != http.StatusOK {
		t.Fatalf("reserve status = %d, body %s", rec.Code, rec.Body.String())
	}

	item, err := h.stores.Items.GetByID(itemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.ReservedBy == nil || *item.ReservedBy != alice {
		t.Errorf("reserved_by = %v, want %d (body user id ignored)", item.ReservedBy, alice)
	}

	rec = do(t, "POST /reservation", h.items.Reserve, "POST", "/reservation", alice, map[string]any{"item_id": itemID})
	if rec.Code != http.StatusConflict {
		t.Errorf("second reserve status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = do(t, "DELETE /reservation/{itemId}", h.items.Unreserve, "DELETE", pathf("/reservation/%d", itemID), alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unreserve status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, "DELETE /reservation/{itemId}", h.items.Unreserve, "DELETE", pathf("/reservation/%d", itemID), alice, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("unreserve released status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestReserveMissingItemID(t *testing.T) {
	h, alice, _, _, _ := setupItemTest(t)

	rec := do(t, "POST /reservation", h.items.Reserve, "POST", "/reservation", alice, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestReserveOwnItem(t *testing.T) {
	h, _, bob, _, itemID := setupItemTest(t)

	rec := do(t, "POST /reservation", h.items.Reserve, "POST", "/reservation", bob, map[string]any{"item_id": itemID})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestUnreserveNeverReserved(t *testing.T) {
	h, alice, _, _, itemID := setupItemTest(t)

	rec := do(t, "DELETE /reservation/{itemId}", h.items.Unreserve, "DELETE", pathf("/reservation/%d", itemID), alice, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListItemsHidesOwnReservation(t *testing.T) {
	h, alice, bob, listID, itemID := setupItemTest(t)

	do(t, "POST /reservation", h.items.Reserve, "POST", "/reservation", alice, map[string]any{"item_id": itemID})

	rec := do(t, "GET /wishlist/{id}/items", h.items.List, "GET", pathf("/wishlist/%d/items", listID), bob, nil)
	own := decode[[]map[string]any](t, rec)
	if len(own) != 1 {
		t.Fatalf("items = %d, want 1", len(own))
	}
	for _, key := range []string{"reserved", "reserved_by", "bought", "reservation"} {
		if _, ok := own[0][key]; ok {
			t.Errorf("owner view exposes %q", key)
		}
	}

	rec = do(t, "GET /wishlist/{id}/items", h.items.List, "GET", pathf("/wishlist/%d/items", listID), alice, nil)
	other := decode[[]map[string]any](t, rec)
	if other[0]["reserved"] != true {
		t.Errorf("reserved = %v, want true", other[0]["reserved"])
	}
	res, ok := other[0]["reservation"].(map[string]any)
	if !ok {
		t.Fatalf("reservation missing from member view: %v", other[0])
	}
	user := res["reserving_user"].(map[string]any)
	if user["username"] != "alice" {
		t.Errorf("reserving user = %v, want alice", user["username"])
	}
}

func TestListItemsNonMember(t *testing.T) {
	h, _, _, listID, _ := setupItemTest(t)
	carol := h.user(t, "carol")

	rec := do(t, "GET /wishlist/{id}/items", h.items.List, "GET", pathf("/wishlist/%d/items", listID), carol, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMarkBought(t *testing.T) {
	h, alice, bob, _, itemID := setupItemTest(t)

	rec := do(t, "PUT /item/{id}/bought", h.items.MarkBought, "PUT", pathf("/item/%d/bought", itemID), alice, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("bought before reserve status = %d, want %d", rec.Code, http.StatusConflict)
	}

	do(t, "POST /reservation", h.items.Reserve, "POST", "/reservation", alice, map[string]any{"item_id": itemID})

	rec = do(t, "PUT /item/{id}/bought", h.items.MarkBought, "PUT", pathf("/item/%d/bought", itemID), bob, nil)
	if rec.Code == http.StatusOK {
		t.Error("owner should not mark own item bought")
	}

	rec = do(t, "PUT /item/{id}/bought", h.items.MarkBought, "PUT", pathf("/item/%d/bought", itemID), alice, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}
