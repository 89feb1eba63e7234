// Package wishlist implements wishlists, their membership, the invitation
// workflow and the item reservation engine.
package wishlist

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/wishlist/internal/apperr"
	"github.com/dukerupert/wishlist/internal/metrics"
	"github.com/dukerupert/wishlist/internal/model"
	"github.com/dukerupert/wishlist/internal/store"
)

type Config struct {
	EmailSecret []byte
	EmailTTL    time.Duration
}

type Mailer interface {
	SendInvitation(to, sender, wishlistName, token string) error
	SendAddedToWishlist(to, username, sender, wishlistName string) error
}

type Service struct {
	stores  *store.Stores
	cfg     Config
	mailer  Mailer
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(stores *store.Stores, cfg Config, mailer Mailer, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		stores:  stores,
		cfg:     cfg,
		mailer:  mailer,
		metrics: m,
		logger:  logger.With("component", "wishlist"),
		now:     time.Now,
	}
}

// Create makes a wishlist and enrols its author as the first member.
func (s *Service) Create(name, description string, authorID int64) (*model.Wishlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.E(apperr.Invalid, "title is required")
	}

	var w *model.Wishlist
	err := s.stores.WithinTx(func(tx *store.Stores) error {
		var err error
		w, err = tx.Wishlists.Create(name, description, authorID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "create wishlist", err)
		}
		if _, err := tx.Wishlists.AddMember(w.ID, authorID); err != nil {
			return apperr.Wrap(apperr.Internal, "create wishlist", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wishlist created", "wishlist_id", w.ID, "author_id", authorID)
	return w, nil
}

func (s *Service) Get(wishlistID int64) (*model.Wishlist, error) {
	w, err := s.stores.Wishlists.GetByID(wishlistID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "get wishlist", err)
	}
	if w == nil {
		return nil, apperr.E(apperr.NotFound, "wishlist not found")
	}
	return w, nil
}

// AddMember enrols a user. Repeating the call returns the existing
// membership.
func (s *Service) AddMember(wishlistID, userID int64) (*model.Membership, error) {
	if _, err := s.Get(wishlistID); err != nil {
		return nil, err
	}
	m, err := s.stores.Wishlists.AddMember(wishlistID, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "add member", err)
	}
	return m, nil
}

// Close marks a wishlist closed. Only its author may close it and closing
// is one-way.
func (s *Service) Close(wishlistID, callerID int64) error {
	w, err := s.Get(wishlistID)
	if err != nil {
		return err
	}
	if w.AuthorID != callerID {
		return apperr.E(apperr.Forbidden, "only the author can close a wishlist")
	}
	if w.IsClosed {
		return nil
	}
	if err := s.stores.Wishlists.SetClosed(wishlistID); err != nil {
		return apperr.Wrap(apperr.Internal, "close wishlist", err)
	}
	s.logger.Info("wishlist closed", "wishlist_id", wishlistID)
	return nil
}

// ListForUser returns the open wishlists the user belongs to.
func (s *Service) ListForUser(userID int64) ([]model.Wishlist, error) {
	lists, err := s.stores.Wishlists.ListOpenForUser(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list wishlists", err)
	}
	if lists == nil {
		lists = []model.Wishlist{}
	}
	return lists, nil
}

// Members lists the users of a wishlist. Non-members get NotFound so they
// cannot probe which wishlists exist.
func (s *Service) Members(wishlistID, callerID int64) ([]model.PublicUser, error) {
	if _, _, err := s.requireMember(s.stores, wishlistID, callerID); err != nil {
		return nil, err
	}
	users, err := s.stores.Wishlists.Members(wishlistID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list members", err)
	}
	if users == nil {
		users = []model.PublicUser{}
	}
	return users, nil
}

// requireMember loads the wishlist and the caller's membership in it.
func (s *Service) requireMember(st *store.Stores, wishlistID, userID int64) (*model.Wishlist, *model.Membership, error) {
	w, err := st.Wishlists.GetByID(wishlistID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "get wishlist", err)
	}
	if w == nil {
		return nil, nil, apperr.E(apperr.NotFound, "wishlist not found")
	}
	m, err := st.Wishlists.GetMembership(wishlistID, userID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "get membership", err)
	}
	if m == nil {
		return nil, nil, apperr.E(apperr.NotFound, "wishlist not found")
	}
	return w, m, nil
}
