package model

import "time"

type Wishlist struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	IsClosed       bool      `json:"is_closed"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Membership binds a user to a wishlist. Items belong to a membership, so
// the owner of an item is always a (user, wishlist) pair.
type Membership struct {
	ID         int64     `json:"id"`
	WishlistID int64     `json:"wishlist_id"`
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}
