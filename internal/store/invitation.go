package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/wishlist/internal/model"
)

type InvitationStore struct {
	db querier
}

func scanInvitation(scanner interface{ Scan(...any) error }) (*model.Invitation, error) {
	var inv model.Invitation
	err := scanner.Scan(&inv.ID, &inv.WishlistID, &inv.Email, &inv.Token, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

const invitationCols = `id, wishlist_id, email, token, expires_at, created_at`

func (s *InvitationStore) Create(wishlistID int64, email, token string, expiresAt time.Time) (*model.Invitation, error) {
	result, err := s.db.Exec(
		`INSERT INTO invitations (wishlist_id, email, token, expires_at) VALUES (?, ?, ?, ?)`,
		wishlistID, email, token, expiresAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert invitation: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+invitationCols+` FROM invitations WHERE id = ?`, id)
	return scanInvitation(row)
}

// GetByWishlistAndEmail returns the invitation for (wishlist, email)
// regardless of expiry.
func (s *InvitationStore) GetByWishlistAndEmail(wishlistID int64, email string) (*model.Invitation, error) {
	row := s.db.QueryRow(
		`SELECT `+invitationCols+` FROM invitations WHERE wishlist_id = ? AND email = ?`,
		wishlistID, email,
	)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

// GetValid returns the unexpired invitation matching token and email, or
// nil. Accepted invitations are deleted, so they never match.
func (s *InvitationStore) GetValid(token, email string, now time.Time) (*model.Invitation, error) {
	row := s.db.QueryRow(
		`SELECT `+invitationCols+` FROM invitations
		 WHERE token = ? AND email = ? AND expires_at > ?`,
		token, email, now.UTC(),
	)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	return inv, nil
}

func (s *InvitationStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}
