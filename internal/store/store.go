package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicate is returned when an insert violates a UNIQUE constraint.
var ErrDuplicate = errors.New("duplicate record")

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Stores groups the table stores over one handle. Stores returned by New
// run each statement on its own; the value handed to WithinTx runs every
// statement inside the same transaction.
type Stores struct {
	db *sql.DB

	Users          *UserStore
	Wishlists      *WishlistStore
	Items          *ItemStore
	Reservations   *ReservationStore
	Invitations    *InvitationStore
	PasswordResets *PasswordResetStore
	RefreshTokens  *RefreshTokenStore
}

func New(db *sql.DB) *Stores {
	s := bind(db)
	s.db = db
	return s
}

func bind(q querier) *Stores {
	return &Stores{
		Users:          &UserStore{db: q},
		Wishlists:      &WishlistStore{db: q},
		Items:          &ItemStore{db: q},
		Reservations:   &ReservationStore{db: q},
		Invitations:    &InvitationStore{db: q},
		PasswordResets: &PasswordResetStore{db: q},
		RefreshTokens:  &RefreshTokenStore{db: q},
	}
}

// WithinTx runs fn against stores bound to a single transaction, committing
// if fn returns nil and rolling back otherwise. Nested calls reuse the
// enclosing transaction.
func (s *Stores) WithinTx(fn func(tx *Stores) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(bind(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
