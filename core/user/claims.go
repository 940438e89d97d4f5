package user

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/trezcool/darasa/core/role"
)

var (
	nowFunc = time.Now // mockable

	errInvalidToken = errors.New("invalid token")
)

// Claims represents the authorization claims transmitted via the backend JWT.
type Claims struct {
	jwt.StandardClaims
	Username string       `json:"username,omitempty"`
	Email    string       `json:"email,omitempty"`
	IsAdmin  bool         `json:"is_admin,omitempty"`
	Roles    []role.Value `json:"roles,omitempty"`
}

// ParseClaims decodes a credential's claims without verifying the signature.
// The client holds no signing key; verification is the server's job. The
// claims are only used to surface expiry before dispatching a doomed call.
func ParseClaims(token string) (*Claims, error) {
	claims := new(Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}

func (c *Claims) Expired() bool {
	return c.ExpiresAt > 0 && nowFunc().Unix() >= c.ExpiresAt
}
