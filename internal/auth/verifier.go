package auth

import (
	"context"
	"errors"
	"fmt"

	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
)

// State is the outcome of inspecting the credentials of one request.
type State int

const (
	StateNoTokens State = iota
	StateAccessValid
	StateAccessExpiredRefreshValid
	StateAccessExpiredRefreshExpired
	StateAccessInvalid
	StateRefreshInvalid
)

func (s State) String() string {
	switch s {
	case StateNoTokens:
		return "no_tokens"
	case StateAccessValid:
		return "access_valid"
	case StateAccessExpiredRefreshValid:
		return "access_expired_refresh_valid"
	case StateAccessExpiredRefreshExpired:
		return "access_expired_refresh_expired"
	case StateAccessInvalid:
		return "access_invalid"
	case StateRefreshInvalid:
		return "refresh_invalid"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Decision is what the verifier concluded for a request. Rotated is set only
// in StateAccessExpiredRefreshValid.
type Decision struct {
	State   State
	Session Session
	Rotated *Token
}

func (d Decision) Authenticated() bool {
	return d.State == StateAccessValid || d.State == StateAccessExpiredRefreshValid
}

// ReauthenticationRequired distinguishes a session that can no longer be
// renewed from one that was presented with bad credentials.
func (d Decision) ReauthenticationRequired() bool {
	return d.State == StateAccessExpiredRefreshExpired
}

// Verifier runs the per-request state machine. It holds no per-request state.
type Verifier struct {
	tokens *Manager
	deny   domainauth.Denylist
}

func NewVerifier(tokens *Manager, deny domainauth.Denylist) *Verifier {
	if deny == nil {
		deny = domainauth.NopDenylist{}
	}
	return &Verifier{tokens: tokens, deny: deny}
}

// Resolve inspects the raw cookie values. Rotation is attempted only when the
// access token is absent or provably expired; a tampered access token is
// rejected without looking at the refresh token. A non-nil error means the
// decision could not be made (denylist or signing failure) and the request
// must be failed.
func (v *Verifier) Resolve(ctx context.Context, access, refresh string) (Decision, error) {
	if access == "" && refresh == "" {
		return Decision{State: StateNoTokens}, nil
	}

	if access != "" {
		claims, err := v.tokens.ParseAccess(access)
		switch {
		case err == nil:
			if err := v.checkRevoked(ctx, claims); err != nil {
				return rejectOnRevoked(StateAccessInvalid, err)
			}
			return Decision{State: StateAccessValid, Session: NewSession(claims.Identity())}, nil
		case errors.Is(err, ErrTokenExpired):
		default:
			return Decision{State: StateAccessInvalid}, nil
		}
	}

	// Nothing left to renew with: the client has to sign in again.
	if refresh == "" {
		return Decision{State: StateAccessExpiredRefreshExpired}, nil
	}

	claims, err := v.tokens.ParseRefresh(refresh)
	switch {
	case err == nil:
	case errors.Is(err, ErrTokenExpired):
		return Decision{State: StateAccessExpiredRefreshExpired}, nil
	default:
		return Decision{State: StateRefreshInvalid}, nil
	}
	if err := v.checkRevoked(ctx, claims); err != nil {
		return rejectOnRevoked(StateRefreshInvalid, err)
	}

	id := claims.Identity()
	rotated, err := v.tokens.IssueAccess(id)
	if err != nil {
		return Decision{State: StateRefreshInvalid}, fmt.Errorf("rotate access token: %w", err)
	}
	return Decision{
		State:   StateAccessExpiredRefreshValid,
		Session: NewSession(id),
		Rotated: &rotated,
	}, nil
}

// Revoke denylists a presented token of the given kind until its natural
// expiry. Tokens that no longer verify need no revocation.
func (v *Verifier) Revoke(ctx context.Context, kind Kind, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	parse := v.tokens.ParseAccess
	if kind == KindRefresh {
		parse = v.tokens.ParseRefresh
	}
	claims, err := parse(raw)
	if err != nil {
		return "", nil
	}
	if err := v.deny.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return "", fmt.Errorf("revoke %s token: %w", kind, err)
	}
	return claims.ID, nil
}

func (v *Verifier) checkRevoked(ctx context.Context, c *Claims) error {
	revoked, err := v.deny.IsRevoked(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("denylist lookup: %w", err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func rejectOnRevoked(state State, err error) (Decision, error) {
	if errors.Is(err, ErrTokenRevoked) {
		return Decision{State: state}, nil
	}
	return Decision{State: state}, err
}
