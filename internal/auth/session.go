package auth

import (
	"context"

	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
)

// Session is the request-scoped authentication result. It is a value: once
// placed in a context it cannot be changed by later middleware.
type Session struct {
	user          domainauth.Identity
	authenticated bool
}

func NewSession(id domainauth.Identity) Session {
	return Session{user: id, authenticated: true}
}

// User returns the identity of the caller, if any.
func (s Session) User() (domainauth.Identity, bool) { return s.user, s.authenticated }

func (s Session) Authenticated() bool { return s.authenticated }

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the zero (anonymous) Session when none is set.
func SessionFromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}
