package auth

import (
	"context"
	"errors"
	"fmt"

	authcore "github.com/NordCoder/session-gateway/internal/auth"
	"github.com/NordCoder/session-gateway/internal/credentials"
	domainauth "github.com/NordCoder/session-gateway/internal/domain/auth"
	"github.com/NordCoder/session-gateway/internal/domain/user"
	"go.uber.org/zap"
)

type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Presented holds the raw cookie values of the current request.
type Presented struct {
	Access  string
	Refresh string
}

type Deps struct {
	Accounts user.Repo
	Roles    user.RoleRepo
	Tx       Transactor
	Hasher   Hasher
	Tokens   *authcore.Manager
	Verifier *authcore.Verifier
	Events   *Emitter
	Log      *zap.Logger
	// Revocation enables denylisting on sign-out and password change.
	Revocation bool
}

type Usecase struct {
	accounts   user.Repo
	roles      user.RoleRepo
	tx         Transactor
	hasher     Hasher
	tokens     *authcore.Manager
	verifier   *authcore.Verifier
	events     *Emitter
	log        *zap.Logger
	revocation bool
}

func NewUsecase(d Deps) *Usecase {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		accounts:   d.Accounts,
		roles:      d.Roles,
		tx:         d.Tx,
		hasher:     d.Hasher,
		tokens:     d.Tokens,
		verifier:   d.Verifier,
		events:     d.Events,
		log:        log,
		revocation: d.Revocation,
	}
}

// SignUp creates an account. Nothing is written unless validation, the
// uniqueness check and the role check all pass.
func (u *Usecase) SignUp(ctx context.Context, p credentials.Payload) (domainauth.Identity, error) {
	res := credentials.Validate(credentials.KindSignUp, p)
	if err := res.Err(); err != nil {
		return domainauth.Identity{}, err
	}
	n := res.Normalized

	exists, err := u.accounts.Exists(ctx, user.Lookup{Username: n.Username, Email: n.Email})
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("check account: %w", err)
	}
	if exists {
		return domainauth.Identity{}, ErrAccountExists
	}

	if _, err := u.roles.GetByID(ctx, n.RoleID); err != nil {
		if errors.Is(err, user.ErrRoleNotFound) {
			return domainauth.Identity{}, ErrRoleNotFound
		}
		return domainauth.Identity{}, fmt.Errorf("check role: %w", err)
	}

	digest, err := u.hasher.Hash(ctx, n.Password)
	if err != nil {
		return domainauth.Identity{}, err
	}

	// The role is looked up again inside the transaction; the foreign key
	// covers a role deleted in between.
	acc := &user.Account{Username: n.Username, Email: n.Email, PasswordHash: digest, RoleID: n.RoleID}
	err = u.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := u.roles.GetByID(ctx, acc.RoleID); err != nil {
			return err
		}
		return u.accounts.Create(ctx, acc)
	})
	switch {
	case errors.Is(err, user.ErrRoleNotFound):
		return domainauth.Identity{}, ErrRoleNotFound
	case errors.Is(err, user.ErrConflict):
		return domainauth.Identity{}, ErrAccountExists
	case err != nil:
		return domainauth.Identity{}, fmt.Errorf("create account: %w", err)
	}

	id := identityOf(acc)
	u.events.Emit(ctx, domainauth.Event{Type: domainauth.EventSignedUp, AccountID: id.ID, Username: id.Username})
	return id, nil
}

func (u *Usecase) SignIn(ctx context.Context, p credentials.Payload) (domainauth.Identity, authcore.Pair, error) {
	res := credentials.Validate(credentials.KindSignIn, p)
	if err := res.Err(); err != nil {
		return domainauth.Identity{}, authcore.Pair{}, err
	}
	n := res.Normalized

	acc, err := u.accounts.FindByIdentity(ctx, user.Lookup{Username: n.Username, Email: n.Email})
	switch {
	case errors.Is(err, user.ErrNotFound):
		signIns.WithLabelValues("unknown_account").Inc()
		return domainauth.Identity{}, authcore.Pair{}, ErrAccountNotFound
	case err != nil:
		return domainauth.Identity{}, authcore.Pair{}, fmt.Errorf("find account: %w", err)
	}

	ok, err := u.hasher.Verify(ctx, n.Password, acc.PasswordHash)
	if err != nil {
		return domainauth.Identity{}, authcore.Pair{}, err
	}
	if !ok {
		signIns.WithLabelValues("bad_password").Inc()
		return domainauth.Identity{}, authcore.Pair{}, ErrInvalidCredentials
	}

	id := identityOf(acc)
	pair, err := u.tokens.IssuePair(id)
	if err != nil {
		return domainauth.Identity{}, authcore.Pair{}, fmt.Errorf("issue tokens: %w", err)
	}
	signIns.WithLabelValues("ok").Inc()

	u.events.Emit(ctx, domainauth.Event{
		Type:      domainauth.EventSignedIn,
		AccountID: id.ID,
		Username:  id.Username,
		TokenID:   pair.Refresh.ID,
	})
	return id, pair, nil
}

// ChangePassword replaces the caller's secret. With revocation enabled the
// presented tokens are denylisted and a fresh pair is returned; otherwise the
// returned pair is nil and existing tokens stay valid until they expire.
func (u *Usecase) ChangePassword(ctx context.Context, id domainauth.Identity, p credentials.Payload, presented Presented) (*authcore.Pair, error) {
	res := credentials.Validate(credentials.KindChangePassword, p)
	if err := res.Err(); err != nil {
		return nil, err
	}

	digest, err := u.hasher.Hash(ctx, res.Normalized.Password)
	if err != nil {
		return nil, err
	}
	switch err := u.accounts.UpdateCredential(ctx, id.ID, digest); {
	case errors.Is(err, user.ErrNotFound):
		return nil, ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("update credential: %w", err)
	}

	var pair *authcore.Pair
	if u.revocation {
		if err := u.revoke(ctx, presented); err != nil {
			return nil, err
		}
		fresh, err := u.tokens.IssuePair(id)
		if err != nil {
			return nil, fmt.Errorf("issue tokens: %w", err)
		}
		pair = &fresh
	}

	u.events.Emit(ctx, domainauth.Event{Type: domainauth.EventPasswordChanged, AccountID: id.ID, Username: id.Username})
	return pair, nil
}

// SignOut denylists whatever verifiable tokens were presented when revocation
// is enabled. Without revocation it only reports the event.
func (u *Usecase) SignOut(ctx context.Context, presented Presented) error {
	id, known := u.identityOf(presented)

	if u.revocation {
		if err := u.revoke(ctx, presented); err != nil {
			return err
		}
	}
	if known {
		u.events.Emit(ctx, domainauth.Event{Type: domainauth.EventSignedOut, AccountID: id.ID, Username: id.Username})
	}
	return nil
}

func (u *Usecase) revoke(ctx context.Context, presented Presented) error {
	accessID, errA := u.verifier.Revoke(ctx, authcore.KindAccess, presented.Access)
	refreshID, errR := u.verifier.Revoke(ctx, authcore.KindRefresh, presented.Refresh)
	if err := errors.Join(errA, errR); err != nil {
		return err
	}
	u.log.Debug("tokens revoked", zap.String("access_jti", accessID), zap.String("refresh_jti", refreshID))
	return nil
}

// identityOf reads the identity from whichever presented token still verifies.
func (u *Usecase) identityOf(presented Presented) (domainauth.Identity, bool) {
	if c, err := u.tokens.ParseRefresh(presented.Refresh); err == nil {
		return c.Identity(), true
	}
	if c, err := u.tokens.ParseAccess(presented.Access); err == nil {
		return c.Identity(), true
	}
	return domainauth.Identity{}, false
}

func identityOf(a *user.Account) domainauth.Identity {
	return domainauth.Identity{ID: a.ID, Email: a.Email, Username: a.Username}
}
