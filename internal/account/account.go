// Package account manages identities: registration, credential checks,
// session tokens and the password reset workflow.
package account

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/wishlist/internal/apperr"
	"github.com/dukerupert/wishlist/internal/metrics"
	"github.com/dukerupert/wishlist/internal/model"
	"github.com/dukerupert/wishlist/internal/store"
	"github.com/dukerupert/wishlist/internal/token"
)

const bcryptCost = 10

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	EmailSecret   []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	EmailTTL      time.Duration
}

type Mailer interface {
	SendPasswordReset(to, username, token string) error
}

type Service struct {
	stores  *store.Stores
	cfg     Config
	mailer  Mailer
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(stores *store.Stores, cfg Config, mailer Mailer, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		stores:  stores,
		cfg:     cfg,
		mailer:  mailer,
		metrics: m,
		logger:  logger.With("component", "account"),
		now:     time.Now,
	}
}

// Session is the result of a successful login.
type Session struct {
	UserID       int64
	Username     string
	AccessToken  string
	RefreshToken string
}

// NormalizeEmail trims and lower-cases an address. Emails are stored and
// compared in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash used for stored credentials.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) Register(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, apperr.E(apperr.Invalid, "username, email and password are required")
	}

	existing, err := s.stores.Users.GetByUsername(username)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "register", err)
	}
	if existing == nil {
		existing, err = s.stores.Users.GetByEmail(email)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "register", err)
		}
	}
	if existing != nil {
		return nil, apperr.E(apperr.Conflict, "username or email already exists")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "register", err)
	}

	u, err := s.stores.Users.Create(username, email, hash)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.E(apperr.Conflict, "username or email already exists")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "register", err)
	}

	s.logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Authenticate checks credentials and issues an access and refresh token
// pair. The refresh token's jti is added to the persisted allowlist.
func (s *Service) Authenticate(email, password string) (*Session, error) {
	u, err := s.stores.Users.GetByEmail(NormalizeEmail(email))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "authenticate", err)
	}
	if u == nil {
		return nil, apperr.E(apperr.Unauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.E(apperr.Unauthorized, "invalid credentials")
	}

	now := s.now()
	access, _, err := token.Issue(s.cfg.AccessSecret, token.Access, token.Claims{UserID: u.ID}, now, s.cfg.AccessTTL)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "authenticate", err)
	}
	refresh, claims, err := token.Issue(s.cfg.RefreshSecret, token.Refresh, token.Claims{UserID: u.ID}, now, s.cfg.RefreshTTL)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "authenticate", err)
	}
	if err := s.stores.RefreshTokens.Create(claims.ID, u.ID, claims.ExpiresAt.Time); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "authenticate", err)
	}

	return &Session{
		UserID:       u.ID,
		Username:     u.Username,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// VerifyAccess validates an access token and returns the user it was
// issued to.
func (s *Service) VerifyAccess(raw string) (int64, error) {
	c, err := token.Verify(raw, s.cfg.AccessSecret, token.Access, s.now())
	if err != nil {
		return 0, apperr.Wrap(apperr.Unauthorized, "failed to authenticate token", err)
	}
	return c.UserID, nil
}

// Refresh exchanges an allowlisted refresh token for a new access token.
// When username is non-empty it must name the token's owner.
func (s *Service) Refresh(username, refreshToken string) (string, error) {
	now := s.now()
	c, err := token.Verify(refreshToken, s.cfg.RefreshSecret, token.Refresh, now)
	if err != nil {
		return "", apperr.Wrap(apperr.Unauthorized, "invalid refresh token", err)
	}

	entry, err := s.stores.RefreshTokens.GetValid(c.ID, now)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "refresh", err)
	}
	if entry == nil || entry.UserID != c.UserID {
		return "", apperr.E(apperr.Unauthorized, "invalid refresh token")
	}

	if username != "" {
		u, err := s.stores.Users.GetByUsername(username)
		if err != nil {
			return "", apperr.Wrap(apperr.Internal, "refresh", err)
		}
		if u == nil || u.ID != c.UserID {
			return "", apperr.E(apperr.Unauthorized, "invalid refresh token")
		}
	}

	access, _, err := token.Issue(s.cfg.AccessSecret, token.Access, token.Claims{UserID: c.UserID}, now, s.cfg.AccessTTL)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "refresh", err)
	}
	return access, nil
}

// Logout revokes a refresh token. Unknown or malformed tokens are ignored.
func (s *Service) Logout(refreshToken string) error {
	c, err := token.Verify(refreshToken, s.cfg.RefreshSecret, token.Refresh, s.now())
	if err != nil {
		return nil
	}
	if err := s.stores.RefreshTokens.Delete(c.ID); err != nil {
		return apperr.Wrap(apperr.Internal, "logout", err)
	}
	return nil
}

// SweepRefreshTokens deletes expired allowlist entries.
func (s *Service) SweepRefreshTokens() (int64, error) {
	return s.stores.RefreshTokens.DeleteExpired(s.now())
}

func (s *Service) Me(userID int64) (*model.User, error) {
	u, err := s.stores.Users.GetByID(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "get user", err)
	}
	if u == nil {
		return nil, apperr.E(apperr.NotFound, "user not found")
	}
	return u, nil
}

func (s *Service) Lookup(username string) (*model.PublicUser, error) {
	u, err := s.stores.Users.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "lookup user", err)
	}
	if u == nil {
		return nil, apperr.E(apperr.NotFound, "user not found")
	}
	p := u.Public()
	return &p, nil
}
