package account

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/wishlist/internal/apperr"
	"github.com/dukerupert/wishlist/internal/database"
	"github.com/dukerupert/wishlist/internal/store"
)

type sentReset struct {
	to, username, token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentReset
	err  error
}

func (f *fakeMailer) SendPasswordReset(to, username, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentReset{to, username, token})
	return nil
}

var testConfig = Config{
	AccessSecret:  []byte("access"),
	RefreshSecret: []byte("refresh"),
	EmailSecret:   []byte("email"),
	AccessTTL:     25 * time.Minute,
	RefreshTTL:    24 * time.Hour,
	EmailTTL:      24 * time.Hour,
}

func setupAccountTest(t *testing.T) (*Service, *store.Stores, *fakeMailer) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stores := store.New(db)
	mailer := &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(stores, testConfig, mailer, nil, logger), stores, mailer
}

func TestRegister(t *testing.T) {
	svc, stores, _ := setupAccountTest(t)

	u, err := svc.Register("alice", "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	stored, err := stores.Users.GetByID(u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored.PasswordHash, "password must be hashed")
}

func TestRegisterConflict(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	_, err := svc.Register("alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register("alice", "other@example.com", "pw")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	_, err = svc.Register("alice2", "alice@example.com", "pw")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _, _ := setupAccountTest(t)

	_, err := svc.Register("", "alice@example.com", "pw")
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	u, _ := svc.Register("alice", "alice@example.com", "pw")

	sess, err := svc.Authenticate("alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, "alice", sess.Username)

	id, err := svc.VerifyAccess(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = svc.VerifyAccess(sess.RefreshToken)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err), "refresh token is not an access token")
}

func TestEmailIgnoresCase(t *testing.T) {
	svc, stores, _ := setupAccountTest(t)
	u, err := svc.Register("alice", " Alice@Example.com", "pw")
	require.NoError(t, err)

	stored, _ := stores.Users.GetByID(u.ID)
	assert.Equal(t, "alice@example.com", stored.Email)

	_, err = svc.Authenticate("ALICE@example.COM", "pw")
	assert.NoError(t, err)

	_, err = svc.Register("alice2", "alice@EXAMPLE.com", "pw")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestAuthenticateBadCredentials(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	svc.Register("alice", "alice@example.com", "pw")

	_, err := svc.Authenticate("alice@example.com", "wrong")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	_, err = svc.Authenticate("nobody@example.com", "pw")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestAccessTokenExpires(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	svc.Register("alice", "alice@example.com", "pw")
	start := time.Now()
	svc.now = func() time.Time { return start }

	sess, err := svc.Authenticate("alice@example.com", "pw")
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(26 * time.Minute) }
	_, err = svc.VerifyAccess(sess.AccessToken)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestRefreshAndLogout(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	u, _ := svc.Register("alice", "alice@example.com", "pw")
	sess, err := svc.Authenticate("alice@example.com", "pw")
	require.NoError(t, err)

	access, err := svc.Refresh("alice", sess.RefreshToken)
	require.NoError(t, err)
	id, err := svc.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	require.NoError(t, svc.Logout(sess.RefreshToken))

	_, err = svc.Refresh("alice", sess.RefreshToken)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err), "revoked token must not refresh")
}

func TestRefreshWrongUsername(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	svc.Register("alice", "alice@example.com", "pw")
	svc.Register("bob", "bob@example.com", "pw")
	sess, _ := svc.Authenticate("alice@example.com", "pw")

	_, err := svc.Refresh("bob", sess.RefreshToken)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestLogoutGarbageIsNoop(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	assert.NoError(t, svc.Logout("not-a-token"))
}

func TestSweepRefreshTokens(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	svc.Register("alice", "alice@example.com", "pw")
	start := time.Now()
	svc.now = func() time.Time { return start }
	svc.Authenticate("alice@example.com", "pw")

	svc.now = func() time.Time { return start.Add(25 * time.Hour) }
	n, err := svc.SweepRefreshTokens()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMeAndLookup(t *testing.T) {
	svc, _, _ := setupAccountTest(t)
	u, _ := svc.Register("alice", "alice@example.com", "pw")

	me, err := svc.Me(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)

	_, err = svc.Me(999)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	pub, err := svc.Lookup("alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, pub.ID)

	_, err = svc.Lookup("nobody")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
