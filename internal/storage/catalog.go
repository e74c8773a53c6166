package storage

import (
	"context"

	"clinicbook/internal/model"
)

func (s *Store) ListBranches(ctx context.Context) ([]model.Branch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, location
		FROM branches
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []model.Branch
	for rows.Next() {
		var b model.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Location); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (ts *TxStore) GetBranch(ctx context.Context, id int64) (model.Branch, error) {
	var b model.Branch
	err := ts.tx.QueryRow(ctx, `
		SELECT id, name, location
		FROM branches
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Location)
	if err != nil {
		return model.Branch{}, err
	}
	return b, nil
}

// ListDoctors returns active doctors, optionally filtered by branch, with
// their specialties aggregated into one row per doctor.
func (s *Store) ListDoctors(ctx context.Context, branchID int64) ([]model.Doctor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.name, d.branch_id, b.name,
			COALESCE(array_agg(sp.name ORDER BY sp.name) FILTER (WHERE sp.name IS NOT NULL), '{}')
		FROM staff d
		JOIN branches b ON b.id = d.branch_id
		LEFT JOIN doctor_specialties ds ON ds.doctor_id = d.id
		LEFT JOIN specialties sp ON sp.id = ds.specialty_id
		WHERE d.role = 'doctor'
			AND d.is_active
			AND ($1 = 0 OR d.branch_id = $1)
		GROUP BY d.id, d.name, d.branch_id, b.name
		ORDER BY d.name ASC
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []model.Doctor
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.BranchID, &d.BranchName, &d.Specialties); err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}
