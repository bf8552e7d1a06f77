package auth

import (
	"errors"

	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	"github.com/golang-jwt/jwt/v5"
)

// Kind separates the two token families. It is checked on parse in addition
// to the per-kind signing key.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims is the payload of both token kinds: the identity snapshot taken at
// sign-in plus registered claims (sub, iat, exp, jti).
type Claims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Kind     Kind   `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() domainauth.Identity {
	return domainauth.Identity{ID: c.UserID, Email: c.Email, Username: c.Username}
}

func newClaims(kind Kind, id domainauth.Identity) Claims {
	return Claims{
		UserID:   id.ID,
		Email:    id.Email,
		Username: id.Username,
		Kind:     kind,
	}
}
