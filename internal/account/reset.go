package account

import (
	"github.com/dukerupert/wishlist/internal/apperr"
	"github.com/dukerupert/wishlist/internal/store"
	"github.com/dukerupert/wishlist/internal/token"
)

// RequestPasswordReset records a reset request and emails the link. The
// request row is kept when delivery fails so the caller can retry.
func (s *Service) RequestPasswordReset(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return apperr.E(apperr.Invalid, "email is required")
	}

	u, err := s.stores.Users.GetByEmail(email)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "request password reset", err)
	}
	if u == nil {
		return apperr.E(apperr.NotFound, "user not found")
	}

	raw, claims, err := token.Issue(s.cfg.EmailSecret, token.PasswordReset, token.Claims{Email: u.Email}, s.now(), s.cfg.EmailTTL)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "request password reset", err)
	}
	if _, err := s.stores.PasswordResets.Create(u.ID, u.Email, raw, claims.ExpiresAt.Time); err != nil {
		return apperr.Wrap(apperr.Internal, "request password reset", err)
	}

	err = s.mailer.SendPasswordReset(u.Email, u.Username, raw)
	s.metrics.Email("password_reset", err)
	if err != nil {
		s.logger.Error("password reset email failed", "user_id", u.ID, "error", err)
		return apperr.Wrap(apperr.Internal, "send password reset email", err)
	}
	return nil
}

// ResetPassword consumes a reset request and sets a new password. The
// request delete and the password write commit together.
func (s *Service) ResetPassword(password, raw string) error {
	if password == "" || raw == "" {
		return apperr.E(apperr.Invalid, "password and token are required")
	}

	now := s.now()
	c, err := token.Verify(raw, s.cfg.EmailSecret, token.PasswordReset, now)
	if err != nil {
		return apperr.Wrap(apperr.InvalidToken, "invalid or expired reset link", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "reset password", err)
	}

	email := NormalizeEmail(c.Email)

	err = s.stores.WithinTx(func(tx *store.Stores) error {
		pr, err := tx.PasswordResets.GetValid(raw, email, now)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "reset password", err)
		}
		if pr == nil {
			return apperr.E(apperr.InvalidToken, "invalid or expired reset link")
		}

		u, err := tx.Users.GetByEmail(email)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "reset password", err)
		}
		if u == nil {
			return apperr.E(apperr.NotFound, "user not found")
		}

		if err := tx.PasswordResets.Delete(pr.ID); err != nil {
			return apperr.Wrap(apperr.Internal, "reset password", err)
		}
		if err := tx.Users.UpdatePassword(u.ID, hash); err != nil {
			return apperr.Wrap(apperr.Internal, "reset password", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("password reset", "email", email)
	return nil
}
