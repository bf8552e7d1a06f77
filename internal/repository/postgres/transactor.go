package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Transactor runs fn inside one transaction. Repositories called with the
// derived context join it; a nested WithTx reuses the outer transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ Transactor = (*PgTransactor)(nil)

type PgTransactor struct {
	db  *DB
	log *zap.Logger
}

func NewTransactor(db *DB, log *zap.Logger) *PgTransactor {
	return &PgTransactor{db: db, log: log}
}

func (t *PgTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) (txErr error) {
	if _, err := extractTx(ctx); err == nil {
		return fn(ctx)
	}

	tx, err := t.db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if txErr != nil {
			if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
				t.log.Error("rollback", zap.Error(err))
			}
			return
		}
		if err := tx.Commit(ctx); err != nil {
			t.log.Error("commit", zap.Error(err))
			txErr = fmt.Errorf("commit tx: %w", err)
		}
	}()

	return fn(txCtx)
}

type txKey struct{}

var ErrTxNotFound = errors.New("tx not found in context")

func extractTx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok || tx == nil {
		return nil, ErrTxNotFound
	}
	return tx, nil
}

type execQueryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// execQueryer picks the transaction carried by ctx, or the pool.
func (db *DB) execQueryer(ctx context.Context) execQueryer {
	if tx, err := extractTx(ctx); err == nil {
		return tx
	}
	return db.Pool
}
