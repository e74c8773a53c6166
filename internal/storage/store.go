package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"clinicbook/libs/db"
)

// Store is the Postgres-backed repository. Read paths run directly on the
// pool; multi-statement writes go through InTx so a single transaction
// carries the whole operation.
type Store struct {
	pool *db.Pool
}

func NewStore(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// TxStore exposes the write operations bound to one open transaction.
type TxStore struct {
	tx pgx.Tx
}

// InTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, ts *TxStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &TxStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
