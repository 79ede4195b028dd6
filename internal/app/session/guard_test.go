package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"groundchat/internal/app/user"
	"groundchat/internal/pkg/auth/jwt"
)

const testSecret = "test-secret"

type guardFixture struct {
	guard    *Guard
	registry *MemoryRegistry
	user     user.User
}

func newGuardFixture(t *testing.T) guardFixture {
	t.Helper()

	creds := user.NewCredentials(user.NewMemoryStore(), user.WithCost(bcrypt.MinCost))
	registry := NewMemoryRegistry(0)
	t.Cleanup(func() { _ = registry.Close() })

	u, err := creds.Register(context.Background(), "ada", "ada@example.com", "s3cret")
	require.NoError(t, err)

	return guardFixture{
		guard:    NewGuard(creds, registry, testSecret, time.Hour),
		registry: registry,
		user:     u,
	}
}

func TestGuard_LoginThenRequire(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	ticket, err := f.guard.Login(ctx, "ada", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.Token)
	assert.Equal(t, f.user.ID, ticket.User.ID)
	assert.Equal(t, f.user.ID, ticket.Session.UserID)

	u, err := f.guard.RequireAuthenticated(ctx, ticket.Token)
	require.NoError(t, err)
	assert.Equal(t, f.user, u)
}

func TestGuard_LoginFailuresAreUniform(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	_, unknownErr := f.guard.Login(ctx, "nobody", "s3cret")
	_, wrongErr := f.guard.Login(ctx, "ada", "wrong")

	assert.ErrorIs(t, unknownErr, user.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, user.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, 0, f.registry.Len(), "failed login must not create a session")
}

func TestGuard_LogoutInvalidatesToken(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	ticket, err := f.guard.Login(ctx, "ada", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.guard.Logout(ctx, ticket.Token))

	_, err = f.guard.RequireAuthenticated(ctx, ticket.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.NoError(t, f.guard.Logout(ctx, ticket.Token), "logout is idempotent")
	assert.NoError(t, f.guard.Logout(ctx, ""))
	assert.NoError(t, f.guard.Logout(ctx, "garbage"))
}

func TestGuard_RequireRejects(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	ticket, err := f.guard.Establish(ctx, f.user)
	require.NoError(t, err)

	otherSigner, err := jwt.GenerateToken(&jwt.Payload{SessionID: ticket.Session.ID, UserID: f.user.ID}, "other-secret", time.Hour)
	require.NoError(t, err)

	forgedUser, err := jwt.GenerateToken(&jwt.Payload{SessionID: ticket.Session.ID, UserID: "someone-else"}, testSecret, time.Hour)
	require.NoError(t, err)

	unknownSession, err := jwt.GenerateToken(&jwt.Payload{SessionID: "0123456789abcdefghijABCDEFGHIJ01", UserID: f.user.ID}, testSecret, time.Hour)
	require.NoError(t, err)

	badShape, err := jwt.GenerateToken(&jwt.Payload{SessionID: "../etc", UserID: f.user.ID}, testSecret, time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"wrong secret":    otherSigner,
		"user mismatch":   forgedUser,
		"unknown session": unknownSession,
		"bad session id":  badShape,
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.guard.RequireAuthenticated(ctx, token)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}

	_, err = f.guard.RequireAuthenticated(ctx, ticket.Token)
	assert.NoError(t, err, "valid ticket still works after rejected attempts")
}

func TestGuard_ExpiredSession(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	now := time.Now()
	f.registry.now = func() time.Time { return now }

	ticket, err := f.guard.Establish(ctx, f.user)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)

	_, err = f.guard.RequireAuthenticated(ctx, ticket.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

// vanishedAccounts behaves as if every account had been removed after login.
type vanishedAccounts struct{ Accounts }

func (vanishedAccounts) Lookup(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func TestGuard_DeletedUserInvalidatesSession(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	ticket, err := f.guard.Establish(ctx, f.user)
	require.NoError(t, err)

	guard := NewGuard(vanishedAccounts{f.guard.accounts}, f.registry, testSecret, time.Hour)

	_, err = guard.RequireAuthenticated(ctx, ticket.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.registry.Get(ctx, ticket.Session.ID)
	assert.ErrorIs(t, err, ErrNotFound, "orphaned session is deleted")
}

type brokenRegistry struct{}

func (brokenRegistry) Create(context.Context, string, time.Duration) (Session, error) {
	return Session{}, errors.New("registry down")
}

func (brokenRegistry) Get(context.Context, string) (Session, error) {
	return Session{}, errors.New("registry down")
}

func (brokenRegistry) Delete(context.Context, string) error {
	return errors.New("registry down")
}

func TestGuard_RegistryFailures(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	good, err := f.guard.Establish(ctx, f.user)
	require.NoError(t, err)

	broken := NewGuard(f.guard.accounts, brokenRegistry{}, testSecret, time.Hour)

	_, err = broken.Login(ctx, "ada", "s3cret")
	require.Error(t, err)

	_, err = broken.RequireAuthenticated(ctx, good.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.Error(t, broken.Logout(ctx, good.Token))
}
