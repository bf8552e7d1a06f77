package postgres

import (
	"errors"

	"github.com/NordCoder/session-gateway/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation = "23505"
	codeFKViolation     = "23503"
)

// mapErr translates driver errors into domain sentinels; notFound is
// returned for pgx.ErrNoRows.
func mapErr(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return user.ErrConflict
		case codeFKViolation:
			return user.ErrRoleNotFound
		}
	}
	return err
}
