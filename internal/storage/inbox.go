package storage

import (
	"context"

	"clinicbook/internal/inbox"
)

// RecordInboxEvent dedupes a consumed event within the current transaction.
func (ts *TxStore) RecordInboxEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	return inbox.Record(ctx, ts.tx, eventID, eventType)
}
