// Package token issues and verifies the signed bearer tokens used for
// request authentication, session refresh, invitations and password resets.
//
// Verification is a pure function of the raw token, the secret, the expected
// purpose and the current time. It never touches storage; callers that need
// single-use semantics check a persisted record afterwards.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "wishlist"

// Purpose is carried in the audience claim so a token minted for one flow
// cannot be replayed against another, even when secrets are shared.
type Purpose string

const (
	Access        Purpose = "access"
	Refresh       Purpose = "refresh"
	Invitation    Purpose = "invitation"
	PasswordReset Purpose = "password_reset"
)

var ErrInvalid = errors.New("invalid or expired token")

type Claims struct {
	UserID     int64  `json:"user_id,omitempty"`
	Email      string `json:"user_email,omitempty"`
	WishlistID int64  `json:"wishlist_id,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs c for purpose with an expiry of now+ttl. A random jti is
// assigned when c does not carry one.
func Issue(secret []byte, purpose Purpose, c Claims, now time.Time, ttl time.Duration) (string, *Claims, error) {
	if len(secret) == 0 {
		return "", nil, fmt.Errorf("sign %s token: empty secret", purpose)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Issuer = issuer
	c.Audience = jwt.ClaimStrings{string(purpose)}
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, &c, nil
}

// Verify checks signature, algorithm, issuer, purpose and expiry at now.
// Every failure is reported as ErrInvalid wrapping the parser's reason.
func Verify(raw string, secret []byte, purpose Purpose, now time.Time) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalid
	}

	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c,
		func(t *jwt.Token) (any, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(string(purpose)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &c, nil
}
