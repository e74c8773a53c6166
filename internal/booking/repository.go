package booking

import (
	"context"

	"clinicbook/internal/storage"
)

type pgRepository struct {
	store *storage.Store
}

// NewPgRepository adapts the Postgres store to the booking transaction
// interface.
func NewPgRepository(store *storage.Store) Repository {
	return pgRepository{store: store}
}

func (r pgRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return r.store.InTx(ctx, func(ctx context.Context, ts *storage.TxStore) error {
		return fn(ctx, ts)
	})
}
