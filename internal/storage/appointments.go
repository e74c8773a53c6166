package storage

import (
	"context"
	"time"

	"clinicbook/internal/model"
)

// NextBookingSeq increments and returns the per-day booking counter. The
// upsert keeps the counter row authoritative under concurrent bookings; two
// transactions incrementing the same day serialize on the row lock.
func (ts *TxStore) NextBookingSeq(ctx context.Context, day time.Time) (int64, error) {
	var counter int64
	err := ts.tx.QueryRow(ctx, `
		INSERT INTO booking_counters (seq_date, counter)
		VALUES ($1, 1)
		ON CONFLICT (seq_date) DO UPDATE SET counter = booking_counters.counter + 1
		RETURNING counter
	`, day).Scan(&counter)
	return counter, err
}

func (ts *TxStore) InsertAppointment(ctx context.Context, appt *model.Appointment) (int64, error) {
	var id int64
	err := ts.tx.QueryRow(ctx, `
		INSERT INTO appointments
			(appointment_number, patient_id, doctor_id, slot_id, appointment_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, appt.AppointmentNumber, appt.PatientID, appt.DoctorID, appt.SlotID,
		appt.AppointmentType, appt.Status).Scan(&id, &appt.CreatedAt)
	if err != nil {
		return 0, err
	}
	appt.ID = id
	return id, nil
}

const appointmentColumns = `id, appointment_number, patient_id, doctor_id, slot_id,
	appointment_type, status, COALESCE(consultation_notes, ''), COALESCE(diagnosis, ''),
	created_at, completed_at, cancelled_at`

// GetAppointmentForDoctorForUpdate loads an appointment owned by the given
// doctor and locks the row for the rest of the transaction.
func (ts *TxStore) GetAppointmentForDoctorForUpdate(ctx context.Context, appointmentID, doctorID int64) (model.Appointment, error) {
	return scanAppointment(ts.tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND doctor_id = $2
		FOR UPDATE
	`, appointmentID, doctorID))
}

// CompleteAppointment is guarded on the current status so a transition can
// only happen out of the scheduled state, even if the in-Go check raced.
func (ts *TxStore) CompleteAppointment(ctx context.Context, appointmentID int64, notes, diagnosis string) (time.Time, error) {
	var completedAt time.Time
	err := ts.tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'completed',
			consultation_notes = $2,
			diagnosis = $3,
			completed_at = now()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING completed_at
	`, appointmentID, notes, diagnosis).Scan(&completedAt)
	return completedAt, err
}

func (ts *TxStore) CancelAppointment(ctx context.Context, appointmentID int64) (time.Time, error) {
	var cancelledAt time.Time
	err := ts.tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING cancelled_at
	`, appointmentID).Scan(&cancelledAt)
	return cancelledAt, err
}

// AppointmentDetail joins the display fields the list endpoints serve.
type AppointmentDetail struct {
	model.Appointment
	DoctorName    string
	BranchName    string
	PatientName   string
	PatientNumber string
	SlotDate      time.Time
	SlotTime      string
}

func (s *Store) ListPatientAppointments(ctx context.Context, patientID int64) ([]AppointmentDetail, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.appointment_number, a.patient_id, a.doctor_id, a.slot_id,
			a.appointment_type, a.status, COALESCE(a.consultation_notes, ''), COALESCE(a.diagnosis, ''),
			a.created_at, a.completed_at, a.cancelled_at,
			d.name, b.name, ts.slot_date, to_char(ts.slot_time, 'HH24:MI')
		FROM appointments a
		JOIN staff d ON d.id = a.doctor_id
		JOIN branches b ON b.id = d.branch_id
		JOIN time_slots ts ON ts.id = a.slot_id
		WHERE a.patient_id = $1
		ORDER BY ts.slot_date DESC, ts.slot_time DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		if err := rows.Scan(
			&d.ID, &d.AppointmentNumber, &d.PatientID, &d.DoctorID, &d.SlotID,
			&d.AppointmentType, &d.Status, &d.ConsultationNotes, &d.Diagnosis,
			&d.CreatedAt, &d.CompletedAt, &d.CancelledAt,
			&d.DoctorName, &d.BranchName, &d.SlotDate, &d.SlotTime,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListDoctorAppointments returns the doctor's appointments, limited to one
// slot date when date is non-zero.
func (s *Store) ListDoctorAppointments(ctx context.Context, doctorID int64, date time.Time) ([]AppointmentDetail, error) {
	var dateArg any
	if !date.IsZero() {
		dateArg = date
	}
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.appointment_number, a.patient_id, a.doctor_id, a.slot_id,
			a.appointment_type, a.status, COALESCE(a.consultation_notes, ''), COALESCE(a.diagnosis, ''),
			a.created_at, a.completed_at, a.cancelled_at,
			p.name, p.patient_number, ts.slot_date, to_char(ts.slot_time, 'HH24:MI')
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN time_slots ts ON ts.id = a.slot_id
		WHERE a.doctor_id = $1 AND ($2::date IS NULL OR ts.slot_date = $2::date)
		ORDER BY ts.slot_date DESC, ts.slot_time ASC
	`, doctorID, dateArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []AppointmentDetail
	for rows.Next() {
		var d AppointmentDetail
		if err := rows.Scan(
			&d.ID, &d.AppointmentNumber, &d.PatientID, &d.DoctorID, &d.SlotID,
			&d.AppointmentType, &d.Status, &d.ConsultationNotes, &d.Diagnosis,
			&d.CreatedAt, &d.CompletedAt, &d.CancelledAt,
			&d.PatientName, &d.PatientNumber, &d.SlotDate, &d.SlotTime,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func scanAppointment(row rowScanner) (model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID, &appt.AppointmentNumber, &appt.PatientID, &appt.DoctorID, &appt.SlotID,
		&appt.AppointmentType, &appt.Status, &appt.ConsultationNotes, &appt.Diagnosis,
		&appt.CreatedAt, &appt.CompletedAt, &appt.CancelledAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}
