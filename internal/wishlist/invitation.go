package wishlist

import (
	"errors"
	"strings"

	"github.com/dukerupert/wishlist/internal/account"
	"github.com/dukerupert/wishlist/internal/apperr"
	"github.com/dukerupert/wishlist/internal/model"
	"github.com/dukerupert/wishlist/internal/store"
	"github.com/dukerupert/wishlist/internal/token"
)

// InviteOutcome reports how an invitation was resolved.
type InviteOutcome string

const (
	// InviteAdded means the email belonged to a user who was enrolled
	// directly. No invitation record exists.
	InviteAdded InviteOutcome = "added"
	// InviteSent means a pending invitation was stored and an activation
	// link mailed.
	InviteSent InviteOutcome = "invited"
)

// Invite adds the owner of email to the wishlist, or invites them to
// create an account when no user has that email.
//
// Mail is sent after the database work commits. A delivery failure is
// reported as Internal but the membership or invitation remains.
func (s *Service) Invite(wishlistID int64, email string, callerID int64) (InviteOutcome, error) {
	email = account.NormalizeEmail(email)
	if email == "" {
		return "", apperr.E(apperr.Invalid, "invitation email is required")
	}

	w, _, err := s.requireMember(s.stores, wishlistID, callerID)
	if err != nil {
		return "", err
	}
	if w.IsClosed {
		return "", apperr.E(apperr.InvalidState, "wishlist is closed")
	}

	inviter, err := s.stores.Users.GetByID(callerID)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "invite", err)
	}
	if inviter == nil {
		return "", apperr.E(apperr.NotFound, "user not found")
	}

	u, err := s.stores.Users.GetByEmail(email)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "invite", err)
	}
	if u != nil {
		return s.addExisting(w, u, inviter)
	}
	return s.inviteNew(w, email, inviter)
}

func (s *Service) addExisting(w *model.Wishlist, u *model.User, inviter *model.User) (InviteOutcome, error) {
	if _, err := s.stores.Wishlists.AddMember(w.ID, u.ID); err != nil {
		return "", apperr.Wrap(apperr.Internal, "add member", err)
	}
	s.metrics.Invitation(string(InviteAdded))

	err := s.mailer.SendAddedToWishlist(u.Email, u.Username, inviter.Username, w.Name)
	s.metrics.Email("added_to_wishlist", err)
	if err != nil {
		s.logger.Error("added-to-wishlist email failed", "wishlist_id", w.ID, "user_id", u.ID, "error", err)
		return "", apperr.Wrap(apperr.Internal, "send invitation email", err)
	}
	return InviteAdded, nil
}

func (s *Service) inviteNew(w *model.Wishlist, email string, inviter *model.User) (InviteOutcome, error) {
	now := s.now()
	var raw string

	err := s.stores.WithinTx(func(tx *store.Stores) error {
		existing, err := tx.Invitations.GetByWishlistAndEmail(w.ID, email)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "invite", err)
		}
		if existing != nil {
			if existing.ExpiresAt.After(now) {
				return apperr.E(apperr.Conflict, "user already invited to this wishlist")
			}
			if err := tx.Invitations.Delete(existing.ID); err != nil {
				return apperr.Wrap(apperr.Internal, "invite", err)
			}
		}

		var claims *token.Claims
		raw, claims, err = token.Issue(s.cfg.EmailSecret, token.Invitation,
			token.Claims{Email: email, WishlistID: w.ID}, now, s.cfg.EmailTTL)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "invite", err)
		}

		_, err = tx.Invitations.Create(w.ID, email, raw, claims.ExpiresAt.Time)
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.E(apperr.Conflict, "user already invited to this wishlist")
		}
		if err != nil {
			return apperr.Wrap(apperr.Internal, "invite", err)
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.Conflict {
			s.metrics.Invitation("duplicate")
		}
		return "", err
	}
	s.metrics.Invitation(string(InviteSent))

	err = s.mailer.SendInvitation(email, inviter.Username, w.Name, raw)
	s.metrics.Email("invitation", err)
	if err != nil {
		s.logger.Error("invitation email failed", "wishlist_id", w.ID, "error", err)
		return "", apperr.Wrap(apperr.Internal, "send invitation email", err)
	}

	s.logger.Info("invitation sent", "wishlist_id", w.ID)
	return InviteSent, nil
}

// Acceptance describes the membership created by accepting an invitation.
type Acceptance struct {
	UserID     int64
	WishlistID int64
	Created    bool
}

// Accept redeems an invitation token. If no account exists for the invited
// email one is created with the given credentials; an existing account is
// reused as is. The invitation is deleted in the same transaction, so a
// token can be redeemed only once.
func (s *Service) Accept(username, password, raw string) (*Acceptance, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || raw == "" {
		return nil, apperr.E(apperr.Invalid, "username, password and token are required")
	}

	now := s.now()
	c, err := token.Verify(raw, s.cfg.EmailSecret, token.Invitation, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidToken, "invalid or expired activation link", err)
	}

	hash, err := account.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "accept invitation", err)
	}

	email := account.NormalizeEmail(c.Email)

	var res Acceptance
	err = s.stores.WithinTx(func(tx *store.Stores) error {
		inv, err := tx.Invitations.GetValid(raw, email, now)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "accept invitation", err)
		}
		if inv == nil || inv.WishlistID != c.WishlistID {
			return apperr.E(apperr.InvalidToken, "invalid or expired activation link")
		}

		u, err := tx.Users.GetByEmail(email)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "accept invitation", err)
		}
		if u == nil {
			u, err = tx.Users.Create(username, email, hash)
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.E(apperr.Conflict, "username already exists")
			}
			if err != nil {
				return apperr.Wrap(apperr.Internal, "accept invitation", err)
			}
			res.Created = true
		}

		if _, err := tx.Wishlists.AddMember(inv.WishlistID, u.ID); err != nil {
			return apperr.Wrap(apperr.Internal, "accept invitation", err)
		}
		if err := tx.Invitations.Delete(inv.ID); err != nil {
			return apperr.Wrap(apperr.Internal, "accept invitation", err)
		}

		res.UserID = u.ID
		res.WishlistID = inv.WishlistID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invitation accepted", "wishlist_id", res.WishlistID, "user_id", res.UserID, "created", res.Created)
	return &res, nil
}
