package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
)

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// RunInTx executes fn with queries bound to one transaction. The transaction
// is rolled back when fn fails and committed otherwise.
func RunInTx(ctx context.Context, pool TxBeginner, q *dbgen.Queries, fn func(*dbgen.Queries) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(q.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
