package inbox

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Record inserts the event id inside the caller's transaction and reports
// whether it was seen for the first time. The row commits or rolls back
// together with the work the event triggered, so a failed handler leaves no
// dedupe row behind and the redelivery is processed in full.
func Record(ctx context.Context, tx pgx.Tx, eventID, eventType string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO inbox_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
