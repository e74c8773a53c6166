package storage

import (
	"context"
	"time"

	"clinicbook/internal/model"
)

const slotColumns = `id, doctor_id, slot_date, to_char(slot_time, 'HH24:MI'), duration_minutes, is_available`

func (s *Store) ListAvailableSlots(ctx context.Context, doctorID int64, date time.Time) ([]model.TimeSlot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM time_slots
		WHERE doctor_id = $1 AND slot_date = $2 AND is_available
		ORDER BY slot_time ASC
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (ts *TxStore) GetSlot(ctx context.Context, id int64) (model.TimeSlot, error) {
	return scanSlot(ts.tx.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM time_slots
		WHERE id = $1
	`, id))
}

// ClaimSlot flips the availability flag if and only if the slot still belongs
// to the given doctor and is still free. The row update is the arbiter under
// concurrency: of any number of simultaneous claims exactly one sees a row.
func (ts *TxStore) ClaimSlot(ctx context.Context, slotID, doctorID int64) (bool, error) {
	ct, err := ts.tx.Exec(ctx, `
		UPDATE time_slots
		SET is_available = FALSE
		WHERE id = $1 AND doctor_id = $2 AND is_available = TRUE
	`, slotID, doctorID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// InsertSlot adds a provisioned slot. The unique (doctor_id, slot_date,
// slot_time) constraint makes re-provisioning the same window a no-op.
func (ts *TxStore) InsertSlot(ctx context.Context, slot model.TimeSlot) error {
	_, err := ts.tx.Exec(ctx, `
		INSERT INTO time_slots (doctor_id, slot_date, slot_time, duration_minutes, is_available)
		VALUES ($1, $2, $3::time, $4, TRUE)
		ON CONFLICT (doctor_id, slot_date, slot_time) DO NOTHING
	`, slot.DoctorID, slot.SlotDate, slot.SlotTime, slot.DurationMinutes)
	return err
}

func scanSlot(row rowScanner) (model.TimeSlot, error) {
	var slot model.TimeSlot
	err := row.Scan(&slot.ID, &slot.DoctorID, &slot.SlotDate, &slot.SlotTime,
		&slot.DurationMinutes, &slot.IsAvailable)
	if err != nil {
		return model.TimeSlot{}, err
	}
	return slot, nil
}
