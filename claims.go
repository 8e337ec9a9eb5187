package console

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the decoded claim set of a session token: identity plus
// timing, with typed accessors instead of map lookups.
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Email() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set signed into session tokens. It carries
// the full identity (id, username, email) so handlers never need a store
// round trip to know who is calling.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID           string `json:"uid,omitempty"`
	AdminUsername string `json:"username,omitempty"`
	AdminEmail    string `json:"email,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the account id
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Username returns the account username
func (c *JWTClaims) Username() string {
	return c.AdminUsername
}

// Email returns the account email
func (c *JWTClaims) Email() string {
	return c.AdminEmail
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
