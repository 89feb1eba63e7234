package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/wishlist/internal/model"
)

type ReservationStore struct {
	db querier
}

func scanReservation(scanner interface{ Scan(...any) error }) (*model.Reservation, error) {
	var r model.Reservation
	var reserved int
	err := scanner.Scan(&r.ID, &r.ItemID, &r.ReservingUserID, &reserved, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Reserved = reserved != 0
	return &r, nil
}

const reservationCols = `id, item_id, reserving_user_id, reserved, created_at, updated_at`

// GetByItem returns the reservation record for an item, active or released.
func (s *ReservationStore) GetByItem(itemID int64) (*model.Reservation, error) {
	row := s.db.QueryRow(`SELECT `+reservationCols+` FROM reservations WHERE item_id = ?`, itemID)
	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return r, nil
}

// Create inserts an active reservation. Only one record may exist per item;
// a second insert returns ErrDuplicate.
func (s *ReservationStore) Create(itemID, userID int64) (*model.Reservation, error) {
	result, err := s.db.Exec(
		`INSERT INTO reservations (item_id, reserving_user_id, reserved) VALUES (?, ?, 1)`,
		itemID, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert reservation: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id)
	return scanReservation(row)
}

// Update sets the holder and state of an existing record.
func (s *ReservationStore) Update(id, userID int64, reserved bool) error {
	_, err := s.db.Exec(
		`UPDATE reservations SET reserving_user_id = ?, reserved = ? WHERE id = ?`,
		userID, boolToInt(reserved), id,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

// Release marks a reservation inactive, keeping the row.
func (s *ReservationStore) Release(id int64) error {
	_, err := s.db.Exec(`UPDATE reservations SET reserved = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("release reservation: %w", err)
	}
	return nil
}
