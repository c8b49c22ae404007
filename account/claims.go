package account

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by every bearer token.
type Claims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// UserID returns the account id the token is bound to.
func (c *Claims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}
