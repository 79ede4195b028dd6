package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"groundchat/internal/pkg/logx"
)

// dummyHash is compared against when the username is unknown so that
// Verify spends the same bcrypt time whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("groundchat-timing-equaliser"), bcrypt.DefaultCost)

// Credentials registers and verifies accounts on top of a Store.
type Credentials struct {
	store  Store
	cost   int
	logger zerolog.Logger
}

// Option configures Credentials.
type Option func(*Credentials)

// WithCost overrides the bcrypt cost (tests use bcrypt.MinCost).
func WithCost(cost int) Option {
	return func(c *Credentials) { c.cost = cost }
}

// NewCredentials returns a Credentials backed by store.
func NewCredentials(store Store, opts ...Option) *Credentials {
	c := &Credentials{
		store:  store,
		cost:   bcrypt.DefaultCost,
		logger: logx.Component("credentials"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account after checking that neither the username nor the
// email is in use. The store's own uniqueness guarantee covers concurrent callers.
func (c *Credentials) Register(ctx context.Context, username, email, password string) (User, error) {
	if len(password) > MaxPasswordBytes {
		return User{}, ErrPasswordTooLong
	}

	if _, err := c.store.FindByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("check username: %w", err)
	}

	if _, err := c.store.FindByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := c.store.Create(ctx, NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			c.logger.Warn().Str("username", username).Err(err).Msg("registration conflict")
			return User{}, err
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	c.logger.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Verify returns the account for username if password matches.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (c *Credentials) Verify(ctx context.Context, username, password string) (User, error) {
	u, err := c.store.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Error().Err(err).Msg("verify: user lookup failed")
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

// Lookup returns the account with the given id.
func (c *Credentials) Lookup(ctx context.Context, id string) (User, error) {
	return c.store.FindByID(ctx, id)
}
