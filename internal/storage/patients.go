package storage

import (
	"context"

	"clinicbook/internal/model"
)

// NextPatientSeq draws the next value from the patient number sequence.
// Sequences never roll back, so a failed registration burns a number; that
// is acceptable and keeps registration race-free.
func (s *Store) NextPatientSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.pool.QueryRow(ctx, `SELECT nextval('patient_number_seq')`).Scan(&seq)
	return seq, err
}

func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO patients (patient_number, name, email, phone, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id
	`, p.PatientNumber, p.Name, p.Email, p.Phone, p.PasswordHash).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetPatientByEmail(ctx context.Context, email string) (model.Patient, error) {
	return scanPatient(s.pool.QueryRow(ctx, `
		SELECT id, patient_number, name, email, COALESCE(phone, ''), password_hash, is_active
		FROM patients
		WHERE email = $1
	`, email))
}

func (s *Store) GetPatientByID(ctx context.Context, id int64) (model.Patient, error) {
	return scanPatient(s.pool.QueryRow(ctx, `
		SELECT id, patient_number, name, email, COALESCE(phone, ''), password_hash, is_active
		FROM patients
		WHERE id = $1
	`, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (model.Patient, error) {
	var p model.Patient
	err := row.Scan(&p.ID, &p.PatientNumber, &p.Name, &p.Email, &p.Phone, &p.PasswordHash, &p.IsActive)
	if err != nil {
		return model.Patient{}, err
	}
	return p, nil
}
