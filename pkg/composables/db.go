package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/salesrecon/pkg/constants"
)

var (
	ErrNoTx   = errors.New("no transaction found in context")
	ErrNoPool = errors.New("no database pool found in context")
)

// Tx is the subset of pgx.Tx used by repositories, satisfied by both
// *pgxpool.Pool and pgx.Tx so reads can run without an open transaction.
type Tx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

func UseTx(ctx context.Context) (Tx, error) {
	tx := ctx.Value(constants.TxKey)
	if tx == nil {
		return UsePool(ctx)
	}
	return tx.(pgx.Tx), nil
}

func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, constants.PoolKey, pool)
}

func UsePool(ctx context.Context) (*pgxpool.Pool, error) {
	pool := ctx.Value(constants.PoolKey)
	if pool == nil {
		return nil, ErrNoPool
	}
	return pool.(*pgxpool.Pool), nil
}

// InTx runs fn inside the context transaction if one exists, otherwise it
// begins a new one on the context pool and commits or rolls back around fn.
func InTx(ctx context.Context, fn func(context.Context) error) error {
	if existing, ok := ctx.Value(constants.TxKey).(pgx.Tx); ok && existing != nil {
		return fn(ctx)
	}

	pool, err := UsePool(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	txCtx := WithTx(ctx, tx)
	if err := fn(txCtx); err != nil {
		if rErr := tx.Rollback(ctx); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

func InTxResult[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := InTx(ctx, func(txCtx context.Context) error {
		var innerErr error
		out, innerErr = fn(txCtx)
		return innerErr
	})
	return out, err
}
