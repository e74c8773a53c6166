package storage

import (
	"context"

	"clinicbook/internal/model"
)

func (ts *TxStore) InsertCharge(ctx context.Context, c *model.Charge) (int64, error) {
	var id int64
	err := ts.tx.QueryRow(ctx, `
		INSERT INTO charges (appointment_id, patient_id, doctor_id, amount_cents, status)
		VALUES ($1, $2, $3, $4, 'unpaid')
		RETURNING id, created_at
	`, c.AppointmentID, c.PatientID, c.DoctorID, c.AmountCents).Scan(&id, &c.CreatedAt)
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

func (s *Store) ListPatientCharges(ctx context.Context, patientID int64) ([]model.Charge, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, appointment_id, patient_id, doctor_id, amount_cents, status, created_at, paid_at
		FROM charges
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []model.Charge
	for rows.Next() {
		var c model.Charge
		if err := rows.Scan(&c.ID, &c.AppointmentID, &c.PatientID, &c.DoctorID,
			&c.AmountCents, &c.Status, &c.CreatedAt, &c.PaidAt); err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}

// OutstandingCents sums a patient's unpaid charges.
func (s *Store) OutstandingCents(ctx context.Context, patientID int64) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM charges
		WHERE patient_id = $1 AND status = 'unpaid'
	`, patientID).Scan(&total)
	return total, err
}

// MarkPatientChargesPaid settles every unpaid charge for the patient and
// returns how many rows changed. Used by the payment webhook.
func (s *Store) MarkPatientChargesPaid(ctx context.Context, patientID int64) (int64, error) {
	ct, err := s.pool.Exec(ctx, `
		UPDATE charges
		SET status = 'paid', paid_at = now()
		WHERE patient_id = $1 AND status = 'unpaid'
	`, patientID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// RecordProviderEvent deduplicates billing provider webhook deliveries.
func (s *Store) RecordProviderEvent(ctx context.Context, providerEventID string) (bool, error) {
	ct, err := s.pool.Exec(ctx, `
		INSERT INTO billing_provider_events (provider_event_id)
		VALUES ($1)
		ON CONFLICT (provider_event_id) DO NOTHING
	`, providerEventID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
