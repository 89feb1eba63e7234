package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/wishlist/internal/model"
)

type RefreshTokenStore struct {
	db querier
}

const refreshTokenCols = `id, user_id, expires_at, created_at`

func (s *RefreshTokenStore) Create(id string, userID int64, expiresAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO refresh_tokens (id, user_id, expires_at) VALUES (?, ?, ?)`,
		id, userID, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetValid returns the allowlist entry for id if it has not expired.
func (s *RefreshTokenStore) GetValid(id string, now time.Time) (*model.RefreshToken, error) {
	var rt model.RefreshToken
	err := s.db.QueryRow(
		`SELECT `+refreshTokenCols+` FROM refresh_tokens WHERE id = ? AND expires_at > ?`,
		id, now.UTC(),
	).Scan(&rt.ID, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &rt, nil
}

func (s *RefreshTokenStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM refresh_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) DeleteExpired(now time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM refresh_tokens WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
