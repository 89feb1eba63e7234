package wishlist

import (
	"errors"
	"strings"

	"github.com/dukerupert/wishlist/internal/apperr"
	"github.com/dukerupert/wishlist/internal/model"
	"github.com/dukerupert/wishlist/internal/store"
)

// AddItem creates an item owned by the caller's membership in the wishlist.
func (s *Service) AddItem(wishlistID, callerID int64, f model.ItemFields) (*model.Item, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return nil, apperr.E(apperr.Invalid, "item name is required")
	}

	w, m, err := s.requireMember(s.stores, wishlistID, callerID)
	if err != nil {
		return nil, err
	}
	if w.IsClosed {
		return nil, apperr.E(apperr.InvalidState, "wishlist is closed")
	}

	it, err := s.stores.Items.Create(m.ID, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "add item", err)
	}
	return it, nil
}

// ListItems returns every item of the wishlist as seen by the caller.
func (s *Service) ListItems(wishlistID, callerID int64) ([]ItemView, error) {
	if _, _, err := s.requireMember(s.stores, wishlistID, callerID); err != nil {
		return nil, err
	}
	items, err := s.stores.Items.ListByWishlist(wishlistID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list items", err)
	}
	return Project(items, callerID), nil
}

// itemForMember loads an item and checks that the caller belongs to its
// wishlist. Both failures are NotFound.
func itemForMember(tx *store.Stores, itemID, callerID int64) (*model.Item, error) {
	it, err := tx.Items.GetByID(itemID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "get item", err)
	}
	if it == nil {
		return nil, apperr.E(apperr.NotFound, "item not found")
	}
	m, err := tx.Wishlists.GetMembership(it.WishlistID, callerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "get membership", err)
	}
	if m == nil {
		return nil, apperr.E(apperr.NotFound, "item not found")
	}
	return it, nil
}

// Reserve claims an item for the caller. There is at most one reservation
// record per item: a released record is reused, an active one is a
// Conflict no matter who holds it.
func (s *Service) Reserve(itemID, callerID int64) error {
	err := s.stores.WithinTx(func(tx *store.Stores) error {
		it, err := itemForMember(tx, itemID, callerID)
		if err != nil {
			return err
		}
		if it.UserID == callerID {
			return apperr.E(apperr.Forbidden, "cannot reserve your own item")
		}

		r, err := tx.Reservations.GetByItem(itemID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "reserve item", err)
		}
		switch {
		case r == nil:
			_, err = tx.Reservations.Create(itemID, callerID)
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.E(apperr.Conflict, "item is already reserved")
			}
		case r.Reserved:
			return apperr.E(apperr.Conflict, "item is already reserved")
		default:
			err = tx.Reservations.Update(r.ID, callerID, true)
		}
		if err != nil {
			return apperr.Wrap(apperr.Internal, "reserve item", err)
		}

		if err := tx.Items.SetReservation(itemID, true, &callerID); err != nil {
			return apperr.Wrap(apperr.Internal, "reserve item", err)
		}
		return nil
	})
	s.metrics.Reservation(resultLabel(err, "reserved"))
	return err
}

// Unreserve releases the caller's reservation. The record is kept with
// reserved=false and the item's mirror fields are cleared.
func (s *Service) Unreserve(itemID, callerID int64) error {
	err := s.stores.WithinTx(func(tx *store.Stores) error {
		if _, err := itemForMember(tx, itemID, callerID); err != nil {
			return err
		}

		r, err := tx.Reservations.GetByItem(itemID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "unreserve item", err)
		}
		if r == nil {
			return apperr.E(apperr.NotFound, "reservation not found")
		}
		if !r.Reserved {
			return apperr.E(apperr.InvalidState, "item is not reserved")
		}
		if r.ReservingUserID != callerID {
			return apperr.E(apperr.Forbidden, "reservation belongs to another user")
		}

		if err := tx.Reservations.Release(r.ID); err != nil {
			return apperr.Wrap(apperr.Internal, "unreserve item", err)
		}
		if err := tx.Items.SetReservation(itemID, false, nil); err != nil {
			return apperr.Wrap(apperr.Internal, "unreserve item", err)
		}
		return nil
	})
	s.metrics.Reservation(resultLabel(err, "released"))
	return err
}

// MarkBought flags an item as bought. Only the user currently holding the
// reservation may do so.
func (s *Service) MarkBought(itemID, callerID int64) error {
	err := s.stores.WithinTx(func(tx *store.Stores) error {
		if _, err := itemForMember(tx, itemID, callerID); err != nil {
			return err
		}

		r, err := tx.Reservations.GetByItem(itemID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "mark bought", err)
		}
		if r == nil || !r.Reserved || r.ReservingUserID != callerID {
			return apperr.E(apperr.InvalidState, "item is not reserved by you")
		}

		if err := tx.Items.SetBought(itemID, true); err != nil {
			return apperr.Wrap(apperr.Internal, "mark bought", err)
		}
		return nil
	})
	s.metrics.Reservation(resultLabel(err, "bought"))
	return err
}

func resultLabel(err error, ok string) string {
	if err == nil {
		return ok
	}
	return apperr.KindOf(err).String()
}
