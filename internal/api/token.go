package api

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"
)

// TokenClaims are the display fields of a bearer token. The signature is not
// checked; the backend does that.
type TokenClaims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt *time.Time
}

// ParseTokenClaims reads the claims of a JWT without verifying it.
func ParseTokenClaims(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, err
	}

	tc := TokenClaims{
		Email: cast.ToString(claims["email"]),
		Name:  cast.ToString(claims["name"]),
	}
	if sub, err := claims.GetSubject(); err == nil {
		tc.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		tc.ExpiresAt = &t
	}
	return tc, nil
}

// Expired reports whether the token's exp claim is before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// Display returns the best identifier for the signed-in user.
func (c TokenClaims) Display() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Email != "":
		return c.Email
	default:
		return c.Subject
	}
}
