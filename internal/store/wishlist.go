package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/wishlist/internal/model"
)

type WishlistStore struct {
	db querier
}

func scanWishlist(scanner interface{ Scan(...any) error }) (*model.Wishlist, error) {
	var w model.Wishlist
	var closed int
	err := scanner.Scan(
		&w.ID, &w.Name, &w.Description, &closed, &w.AuthorID, &w.AuthorUsername,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.IsClosed = closed != 0
	return &w, nil
}

func scanMembership(scanner interface{ Scan(...any) error }) (*model.Membership, error) {
	var m model.Membership
	err := scanner.Scan(&m.ID, &m.WishlistID, &m.UserID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const wishlistSelect = `SELECT w.id, w.name, w.description, w.is_closed, w.author_id, u.username,
	w.created_at, w.updated_at
	FROM wishlists w JOIN users u ON u.id = w.author_id`

const membershipCols = `id, wishlist_id, user_id, created_at`

func (s *WishlistStore) Create(name, description string, authorID int64) (*model.Wishlist, error) {
	result, err := s.db.Exec(
		`INSERT INTO wishlists (name, description, author_id) VALUES (?, ?, ?)`,
		name, description, authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert wishlist: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *WishlistStore) GetByID(id int64) (*model.Wishlist, error) {
	row := s.db.QueryRow(wishlistSelect+` WHERE w.id = ?`, id)
	w, err := scanWishlist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	return w, nil
}

// ListOpenForUser returns the wishlists the user belongs to that are not
// closed, newest first.
func (s *WishlistStore) ListOpenForUser(userID int64) ([]model.Wishlist, error) {
	rows, err := s.db.Query(
		wishlistSelect+`
		 JOIN wishlist_members m ON m.wishlist_id = w.id
		 WHERE m.user_id = ? AND w.is_closed = 0
		 ORDER BY w.created_at DESC, w.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}
	defer rows.Close()

	var lists []model.Wishlist
	for rows.Next() {
		w, err := scanWishlist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wishlist: %w", err)
		}
		lists = append(lists, *w)
	}
	return lists, rows.Err()
}

func (s *WishlistStore) SetClosed(id int64) error {
	_, err := s.db.Exec(`UPDATE wishlists SET is_closed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("close wishlist: %w", err)
	}
	return nil
}

// Delete removes a wishlist. Foreign keys are RESTRICT, so this fails while
// members, items or invitations still reference it.
func (s *WishlistStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM wishlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	return nil
}

// AddMember enrols a user. Adding an existing member is a no-op that
// returns the existing membership.
func (s *WishlistStore) AddMember(wishlistID, userID int64) (*model.Membership, error) {
	_, err := s.db.Exec(
		`INSERT INTO wishlist_members (wishlist_id, user_id) VALUES (?, ?)
		 ON CONFLICT (wishlist_id, user_id) DO NOTHING`,
		wishlistID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	m, err := s.GetMembership(wishlistID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("insert member: %w", sql.ErrNoRows)
	}
	return m, nil
}

func (s *WishlistStore) GetMembership(wishlistID, userID int64) (*model.Membership, error) {
	row := s.db.QueryRow(
		`SELECT `+membershipCols+` FROM wishlist_members WHERE wishlist_id = ? AND user_id = ?`,
		wishlistID, userID,
	)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// Members returns the users enrolled in a wishlist in join order.
func (s *WishlistStore) Members(wishlistID int64) ([]model.PublicUser, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.username FROM wishlist_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.wishlist_id = ?
		 ORDER BY m.id`,
		wishlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var users []model.PublicUser
	for rows.Next() {
		var u model.PublicUser
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
