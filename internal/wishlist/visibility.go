package wishlist

import (
	"time"

	"github.com/dukerupert/wishlist/internal/model"
)

// ItemView is an item as presented to one particular viewer. The
// reservation fields are nil when the viewer owns the item.
type ItemView struct {
	ID           int64            `json:"id"`
	MembershipID int64            `json:"membership_id"`
	UserID       int64            `json:"user_id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	URL          string           `json:"url"`
	CreatedAt    time.Time        `json:"created_at"`
	Bought       *bool            `json:"bought,omitempty"`
	Reserved     *bool            `json:"reserved,omitempty"`
	ReservedBy   *int64           `json:"reserved_by,omitempty"`
	Reservation  *ReservationView `json:"reservation,omitempty"`
}

type ReservationView struct {
	ID            int64            `json:"id"`
	Reserved      bool             `json:"reserved"`
	ReservingUser model.PublicUser `json:"reserving_user"`
}

// Project builds the viewer's projection of items. Items the viewer owns
// never reveal whether, or by whom, they were reserved or bought.
func Project(items []model.Item, viewerID int64) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		v := ItemView{
			ID:           it.ID,
			MembershipID: it.MembershipID,
			UserID:       it.UserID,
			Name:         it.Name,
			Description:  it.Description,
			URL:          it.URL,
			CreatedAt:    it.CreatedAt,
		}
		if it.UserID != viewerID {
			bought, reserved := it.Bought, it.Reserved
			v.Bought = &bought
			v.Reserved = &reserved
			if it.ReservedBy != nil {
				by := *it.ReservedBy
				v.ReservedBy = &by
			}
			if r := it.Reservation; r != nil {
				v.Reservation = &ReservationView{
					ID:       r.ID,
					Reserved: r.Reserved,
					ReservingUser: model.PublicUser{
						ID:       r.ReservingUserID,
						Username: r.ReservingUsername,
					},
				}
			}
		}
		views = append(views, v)
	}
	return views
}
