package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"groundchat/internal/app/user"
	"groundchat/internal/pkg/auth/jwt"
	"groundchat/internal/pkg/logx"
	"groundchat/internal/pkg/randx"
)

// Accounts is the part of user.Credentials the Guard depends on.
type Accounts interface {
	Verify(ctx context.Context, username, password string) (user.User, error)
	Lookup(ctx context.Context, id string) (user.User, error)
}

// Ticket is handed back on a successful login.
type Ticket struct {
	// Token is the signed value stored in the session cookie.
	Token   string
	Session Session
	User    user.User
}

// Guard owns the Anonymous/Authenticated transitions of a client.
type Guard struct {
	accounts Accounts
	registry Registry
	secret   string
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewGuard returns a Guard issuing sessions that live for ttl.
func NewGuard(accounts Accounts, registry Registry, secret string, ttl time.Duration) *Guard {
	return &Guard{
		accounts: accounts,
		registry: registry,
		secret:   secret,
		ttl:      ttl,
		logger:   logx.Component("session_guard"),
	}
}

// TTL is the lifetime of sessions issued by the Guard.
func (g *Guard) TTL() time.Duration {
	return g.ttl
}

// Login verifies credentials and establishes a session. Any credential failure is
// reported as user.ErrInvalidCredentials.
func (g *Guard) Login(ctx context.Context, username, password string) (Ticket, error) {
	u, err := g.accounts.Verify(ctx, username, password)
	if err != nil {
		return Ticket{}, err
	}
	return g.Establish(ctx, u)
}

// Establish creates a session for a user that is already known to exist.
func (g *Guard) Establish(ctx context.Context, u user.User) (Ticket, error) {
	s, err := g.registry.Create(ctx, u.ID, g.ttl)
	if err != nil {
		return Ticket{}, fmt.Errorf("create session: %w", err)
	}

	token, err := jwt.GenerateToken(&jwt.Payload{SessionID: s.ID, UserID: u.ID}, g.secret, g.ttl)
	if err != nil {
		_ = g.registry.Delete(ctx, s.ID)
		return Ticket{}, fmt.Errorf("sign session token: %w", err)
	}

	g.logger.Info().Str("user_id", u.ID).Msg("session established")
	return Ticket{Token: token, Session: s, User: u}, nil
}

// Logout destroys the session named by token. Empty, malformed and unknown tokens
// are not errors; only a registry failure is.
func (g *Guard) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	payload, err := jwt.ParseToken(token, g.secret)
	if err != nil || !randx.IsValidSessionID(payload.SessionID) {
		return nil
	}

	if err := g.registry.Delete(ctx, payload.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	g.logger.Info().Str("user_id", payload.UserID).Msg("session closed")
	return nil
}

// RequireAuthenticated returns the user bound to token, or ErrUnauthenticated.
func (g *Guard) RequireAuthenticated(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrUnauthenticated
	}

	payload, err := jwt.ParseToken(token, g.secret)
	if err != nil || !randx.IsValidSessionID(payload.SessionID) {
		return user.User{}, ErrUnauthenticated
	}

	s, err := g.registry.Get(ctx, payload.SessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.logger.Error().Err(err).Msg("session lookup failed")
		}
		return user.User{}, ErrUnauthenticated
	}

	if s.UserID != payload.UserID {
		g.logger.Warn().Str("session_user", s.UserID).Str("token_user", payload.UserID).Msg("session/token user mismatch")
		return user.User{}, ErrUnauthenticated
	}

	u, err := g.accounts.Lookup(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			g.logger.Info().Str("user_id", s.UserID).Msg("session user gone; invalidating")
			if delErr := g.registry.Delete(ctx, s.ID); delErr != nil {
				g.logger.Error().Err(delErr).Msg("invalidate orphaned session")
			}
		} else {
			g.logger.Error().Err(err).Msg("session user lookup failed")
		}
		return user.User{}, ErrUnauthenticated
	}

	return u, nil
}
