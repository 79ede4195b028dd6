package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set carried in the session cookie.
// It only names a server-side session; authority comes from the session registry,
// so a signed but revoked token is still rejected.
type Payload struct {
	jwt.StandardClaims

	// SessionID references the server-side session record.
	SessionID string `json:"sid"`

	// UserID is the user the session was issued to.
	UserID string `json:"uid"`
}
