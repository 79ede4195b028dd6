/*
Package session binds authenticated users to server-side sessions.

A Registry stores Session records; the Guard establishes them on login, destroys them
on logout, and answers whether a request's session token is bound to a live user.
*/
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Registry.Get for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")

	// ErrUnauthenticated is returned by the Guard whenever a request is not bound to a live user.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Session is the server-side record behind a session cookie.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Registry stores sessions. Delete of an unknown id is not an error.
type Registry interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
