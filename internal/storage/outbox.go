package storage

import (
	"context"

	"clinicbook/internal/outbox"
)

// InsertOutboxEvent writes a domain event in the same transaction as the
// state change producing it.
func (ts *TxStore) InsertOutboxEvent(ctx context.Context, evt outbox.Event) error {
	return outbox.Insert(ctx, ts.tx, evt)
}
