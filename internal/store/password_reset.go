package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/wishlist/internal/model"
)

type PasswordResetStore struct {
	db querier
}

func scanPasswordReset(scanner interface{ Scan(...any) error }) (*model.PasswordReset, error) {
	var pr model.PasswordReset
	err := scanner.Scan(&pr.ID, &pr.UserID, &pr.Email, &pr.Token, &pr.ExpiresAt, &pr.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

const passwordResetCols = `id, user_id, email, token, expires_at, created_at`

func (s *PasswordResetStore) Create(userID int64, email, token string, expiresAt time.Time) (*model.PasswordReset, error) {
	result, err := s.db.Exec(
		`INSERT INTO password_resets (user_id, email, token, expires_at) VALUES (?, ?, ?, ?)`,
		userID, email, token, expiresAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert password reset: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+passwordResetCols+` FROM password_resets WHERE id = ?`, id)
	return scanPasswordReset(row)
}

// GetValid returns the unexpired reset request matching token and email,
// or nil.
func (s *PasswordResetStore) GetValid(token, email string, now time.Time) (*model.PasswordReset, error) {
	row := s.db.QueryRow(
		`SELECT `+passwordResetCols+` FROM password_resets
		 WHERE token = ? AND email = ? AND expires_at > ?`,
		token, email, now.UTC(),
	)
	pr, err := scanPasswordReset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get password reset: %w", err)
	}
	return pr, nil
}

func (s *PasswordResetStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM password_resets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete password reset: %w", err)
	}
	return nil
}
