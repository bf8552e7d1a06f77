package user

import "context"

type Repo interface {
	Create(ctx context.Context, a *Account) error
	FindByIdentity(ctx context.Context, l Lookup) (*Account, error)
	// Exists reports whether any account holds l.Username or l.Email.
	Exists(ctx context.Context, l Lookup) (bool, error)
	UpdateCredential(ctx context.Context, accountID, passwordHash string) error
}

type RoleRepo interface {
	GetByID(ctx context.Context, id string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
}
