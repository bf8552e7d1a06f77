package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/session-gateway/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ user.Repo = (*AccountRepo)(nil)

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

const (
	qAccountInsert = `
INSERT INTO accounts (id, username, email, password_hash, role_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at;`

	// An empty parameter does not constrain the match.
	qAccountByIdentity = `
SELECT id, username, email, password_hash, role_id, created_at, updated_at
FROM accounts
WHERE ($1 = '' OR username = $1)
  AND ($2 = '' OR email = $2)
LIMIT 1;`

	qAccountExists = `
SELECT EXISTS (
    SELECT 1 FROM accounts
    WHERE ($1 <> '' AND username = $1)
       OR ($2 <> '' AND email = $2)
);`

	qAccountUpdateHash = `
UPDATE accounts
SET password_hash = $2,
    updated_at    = NOW()
WHERE id = $1;`
)

// Create assigns a uuid when a.ID is empty and fills the timestamps.
func (r *AccountRepo) Create(ctx context.Context, a *user.Account) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, err := uuid.Parse(a.RoleID); err != nil {
		return user.ErrRoleNotFound
	}

	err := r.db.execQueryer(ctx).
		QueryRow(ctx, qAccountInsert, a.ID, a.Username, a.Email, a.PasswordHash, a.RoleID).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if mapped := mapErr(err, user.ErrNotFound); mapped != err {
			return mapped
		}
		return fmt.Errorf("account insert: %w", err)
	}
	return nil
}

func (r *AccountRepo) FindByIdentity(ctx context.Context, l user.Lookup) (*user.Account, error) {
	if l.Empty() {
		return nil, user.ErrNotFound
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var a user.Account
	if err := scanAccount(r.db.execQueryer(ctx).QueryRow(ctx, qAccountByIdentity, l.Username, l.Email), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) Exists(ctx context.Context, l user.Lookup) (bool, error) {
	if l.Empty() {
		return false, nil
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var ok bool
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qAccountExists, l.Username, l.Email).Scan(&ok); err != nil {
		return false, fmt.Errorf("account exists: %w", err)
	}
	return ok, nil
}

func (r *AccountRepo) UpdateCredential(ctx context.Context, accountID, passwordHash string) error {
	if _, err := uuid.Parse(accountID); err != nil {
		return user.ErrNotFound
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qAccountUpdateHash, accountID, passwordHash)
	if err != nil {
		return fmt.Errorf("account update credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row, out *user.Account) error {
	err := row.Scan(&out.ID, &out.Username, &out.Email, &out.PasswordHash, &out.RoleID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if mapped := mapErr(err, user.ErrNotFound); mapped == user.ErrNotFound {
			return mapped
		}
		return fmt.Errorf("scan account: %w", err)
	}
	return nil
}
