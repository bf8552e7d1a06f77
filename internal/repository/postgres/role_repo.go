package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/session-gateway/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ user.RoleRepo = (*RoleRepo)(nil)

type RoleRepo struct {
	db *DB
}

func NewRoleRepo(db *DB) *RoleRepo { return &RoleRepo{db: db} }

const (
	qRoleByID = `
SELECT id, name, permissions
FROM roles
WHERE id = $1;`

	qRoleList = `
SELECT id, name, permissions
FROM roles
ORDER BY name;`
)

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*user.Role, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, user.ErrRoleNotFound
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	role, err := scanRole(r.db.execQueryer(ctx).QueryRow(ctx, qRoleByID, id))
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepo) List(ctx context.Context) ([]user.Role, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qRoleList)
	if err != nil {
		return nil, fmt.Errorf("role list: %w", err)
	}
	defer rows.Close()

	out := make([]user.Role, 0, 3)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("role list: %w", err)
	}
	return out, nil
}

func scanRole(row pgx.Row) (user.Role, error) {
	var (
		role  user.Role
		perms []string
	)
	if err := row.Scan(&role.ID, &role.Name, &perms); err != nil {
		if mapErr(err, user.ErrRoleNotFound) == user.ErrRoleNotFound {
			return user.Role{}, user.ErrRoleNotFound
		}
		return user.Role{}, fmt.Errorf("scan role: %w", err)
	}
	role.Permissions = make([]user.Permission, 0, len(perms))
	for _, p := range perms {
		role.Permissions = append(role.Permissions, user.Permission(p))
	}
	return role, nil
}
