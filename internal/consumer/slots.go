package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"clinicbook/internal/model"
	"clinicbook/internal/schedule"
	"clinicbook/internal/storage"
	"clinicbook/libs/kafkax"
)

// TopicSlotsProvisioned carries working windows published by the external
// scheduling process.
const TopicSlotsProvisioned = "scheduling.slots.provisioned.v1"

// Tx is the transactional surface slot provisioning needs. The inbox row
// and the slot rows land in one transaction, so a transient failure rolls
// both back and the redelivery is not mistaken for a duplicate.
type Tx interface {
	RecordInboxEvent(ctx context.Context, eventID, eventType string) (bool, error)
	InsertSlot(ctx context.Context, slot model.TimeSlot) error
}

type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type pgStore struct {
	store *storage.Store
}

// NewPgStore adapts the Postgres store to the slot provisioning surface.
func NewPgStore(store *storage.Store) Store {
	return pgStore{store: store}
}

func (s pgStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.store.InTx(ctx, func(ctx context.Context, ts *storage.TxStore) error {
		return fn(ctx, ts)
	})
}

type slotsProvisionedEvent struct {
	DoctorID        int64  `json:"doctor_id"`
	Date            string `json:"date"` // YYYY-MM-DD
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

// SlotsHandler expands a provisioned window into discrete bookable slots.
// The unique slot constraint absorbs overlapping provisioning. Events
// without an id cannot be deduplicated and are applied as delivered.
func SlotsHandler(store Store, logger *slog.Logger) Handler {
	return func(ctx context.Context, meta kafkax.EventMeta, msg kafka.Message) error {
		var evt slotsProvisionedEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			// A malformed payload never becomes parseable; log and move on.
			logger.Error("malformed slot provisioning event", "err", err)
			return nil
		}

		date, err := time.Parse("2006-01-02", evt.Date)
		if err != nil {
			logger.Error("malformed slot provisioning date", "date", evt.Date)
			return nil
		}

		times := schedule.Expand(schedule.Window{
			Date:            date,
			Start:           evt.StartTime,
			End:             evt.EndTime,
			DurationMinutes: evt.DurationMinutes,
		})
		if len(times) == 0 {
			logger.Warn("slot provisioning window expands to nothing",
				"doctor_id", evt.DoctorID, "date", evt.Date)
			return nil
		}

		duplicate := false
		err = store.InTx(ctx, func(ctx context.Context, tx Tx) error {
			if meta.EventID != "" {
				first, err := tx.RecordInboxEvent(ctx, meta.EventID, meta.EventType)
				if err != nil {
					return err
				}
				if !first {
					duplicate = true
					return nil
				}
			}
			for _, slotTime := range times {
				slot := model.TimeSlot{
					DoctorID:        evt.DoctorID,
					SlotDate:        date,
					SlotTime:        slotTime,
					DurationMinutes: evt.DurationMinutes,
				}
				if err := tx.InsertSlot(ctx, slot); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("provision slots for doctor %d on %s: %w", evt.DoctorID, evt.Date, err)
		}
		if duplicate {
			logger.Info("duplicate event ignored",
				"event_id", meta.EventID, "event_type", meta.EventType)
			return nil
		}

		logger.Info("slots provisioned",
			"doctor_id", evt.DoctorID, "date", evt.Date, "count", len(times))
		return nil
	}
}
