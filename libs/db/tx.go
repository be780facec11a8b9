package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNoTransaction is returned by MustTx when the context carries no transaction.
var ErrNoTransaction = errors.New("no active database transaction")

type txKey struct{}

// WithTx returns a context carrying tx. Repositories pick it up with MustTx.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok && tx != nil
}

// MustTx returns the transaction carried by ctx. Writers that must be atomic
// with the caller's unit of work never open their own transaction.
func MustTx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := TxFromContext(ctx)
	if !ok {
		return nil, ErrNoTransaction
	}
	return tx, nil
}

// Run executes fn inside a transaction and commits when fn returns nil.
// If ctx already carries a transaction, fn joins it and the outermost Run
// decides the outcome.
func (p *Pool) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := p.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InTransaction reports whether ctx carries a transaction.
func (p *Pool) InTransaction(ctx context.Context) bool {
	_, ok := TxFromContext(ctx)
	return ok
}

// Querier is the subset of pgx shared by a pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier returns the transaction carried by ctx, or the pool itself.
func (p *Pool) Querier(ctx context.Context) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return p.Pool
}
