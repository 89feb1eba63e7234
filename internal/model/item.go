package model

import "time"

type Item struct {
	ID           int64        `json:"id"`
	MembershipID int64        `json:"membership_id"`
	WishlistID   int64        `json:"wishlist_id"`
	UserID       int64        `json:"user_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	URL          string       `json:"url"`
	Bought       bool         `json:"bought"`
	Reserved     bool         `json:"reserved"`
	ReservedBy   *int64       `json:"reserved_by"`
	Reservation  *Reservation `json:"reservation,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ItemFields holds the user-editable fields of an item.
type ItemFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Reservation is the per-item claim record. A released reservation keeps
// its row with Reserved=false so it can be reused.
type Reservation struct {
	ID                int64     `json:"id"`
	ItemID            int64     `json:"item_id"`
	ReservingUserID   int64     `json:"reserving_user_id"`
	ReservingUsername string    `json:"reserving_username,omitempty"`
	Reserved          bool      `json:"reserved"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
