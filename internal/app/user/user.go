/*
Package user contains the account model and the credential store adapter.

A User is an immutable snapshot returned by a Store; accounts are only created
(Register) and read (Verify, lookups) through named operations.
*/
package user

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Store lookups that match no account.
	ErrNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Verify for any mismatch.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPasswordTooLong is returned by Register for passwords over MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// MaxPasswordBytes is the bcrypt input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

// User is a registered account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser carries the fields needed to insert an account.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// Store persists accounts. Create must enforce username and email uniqueness
// atomically and report collisions as ErrUsernameTaken or ErrEmailTaken.
type Store interface {
	Create(ctx context.Context, u NewUser) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
}
