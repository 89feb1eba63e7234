package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/wishlist/internal/model"
)

type ItemStore struct {
	db querier
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	var bought, reserved int
	var reservedBy sql.NullInt64

	err := scanner.Scan(
		&it.ID, &it.MembershipID, &it.WishlistID, &it.UserID,
		&it.Name, &it.Description, &it.URL, &bought, &reserved, &reservedBy,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Bought = bought != 0
	it.Reserved = reserved != 0
	if reservedBy.Valid {
		it.ReservedBy = &reservedBy.Int64
	}
	return &it, nil
}

const itemSelect = `SELECT i.id, i.membership_id, m.wishlist_id, m.user_id,
	i.name, i.description, i.url, i.bought, i.reserved, i.reserved_by,
	i.created_at, i.updated_at
	FROM items i JOIN wishlist_members m ON m.id = i.membership_id`

func (s *ItemStore) Create(membershipID int64, f model.ItemFields) (*model.Item, error) {
	result, err := s.db.Exec(
		`INSERT INTO items (membership_id, name, description, url) VALUES (?, ?, ?, ?)`,
		membershipID, f.Name, f.Description, f.URL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(itemSelect+` WHERE i.id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// ListByWishlist returns every item in a wishlist together with its
// reservation record, if one was ever made.
func (s *ItemStore) ListByWishlist(wishlistID int64) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT i.id, i.membership_id, m.wishlist_id, m.user_id,
		   i.name, i.description, i.url, i.bought, i.reserved, i.reserved_by,
		   i.created_at, i.updated_at,
		   r.id, r.reserving_user_id, u.username, r.reserved, r.created_at, r.updated_at
		 FROM items i
		 JOIN wishlist_members m ON m.id = i.membership_id
		 LEFT JOIN reservations r ON r.item_id = i.id
		 LEFT JOIN users u ON u.id = r.reserving_user_id
		 WHERE m.wishlist_id = ?
		 ORDER BY i.id`,
		wishlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		var bought, reserved int
		var reservedBy sql.NullInt64
		var resID, resUserID, resReserved sql.NullInt64
		var resUsername sql.NullString
		var resCreated, resUpdated sql.NullTime

		err := rows.Scan(
			&it.ID, &it.MembershipID, &it.WishlistID, &it.UserID,
			&it.Name, &it.Description, &it.URL, &bought, &reserved, &reservedBy,
			&it.CreatedAt, &it.UpdatedAt,
			&resID, &resUserID, &resUsername, &resReserved, &resCreated, &resUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		it.Bought = bought != 0
		it.Reserved = reserved != 0
		if reservedBy.Valid {
			it.ReservedBy = &reservedBy.Int64
		}
		if resID.Valid {
			it.Reservation = &model.Reservation{
				ID:                resID.Int64,
				ItemID:            it.ID,
				ReservingUserID:   resUserID.Int64,
				ReservingUsername: resUsername.String,
				Reserved:          resReserved.Int64 != 0,
				CreatedAt:         resCreated.Time,
				UpdatedAt:         resUpdated.Time,
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SetReservation mirrors the reservation state onto the item row.
func (s *ItemStore) SetReservation(id int64, reserved bool, reservedBy *int64) error {
	var by sql.NullInt64
	if reservedBy != nil {
		by = sql.NullInt64{Int64: *reservedBy, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE items SET reserved = ?, reserved_by = ? WHERE id = ?`,
		boolToInt(reserved), by, id,
	)
	if err != nil {
		return fmt.Errorf("update item reservation: %w", err)
	}
	return nil
}

func (s *ItemStore) SetBought(id int64, bought bool) error {
	_, err := s.db.Exec(`UPDATE items SET bought = ? WHERE id = ?`, boolToInt(bought), id)
	if err != nil {
		return fmt.Errorf("update item bought: %w", err)
	}
	return nil
}
