package storage

import (
	"context"

	"clinicbook/internal/model"
)

const staffColumns = `id, employee_id, name, role, branch_id, consultation_fee_cents, password_hash, is_active`

func (s *Store) GetStaffByEmployeeID(ctx context.Context, employeeID string) (model.Staff, error) {
	return scanStaff(s.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE employee_id = $1
	`, employeeID))
}

func (s *Store) GetStaffByID(ctx context.Context, id int64) (model.Staff, error) {
	return scanStaff(s.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE id = $1
	`, id))
}

func (ts *TxStore) GetStaff(ctx context.Context, id int64) (model.Staff, error) {
	return scanStaff(ts.tx.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE id = $1
	`, id))
}

func scanStaff(row rowScanner) (model.Staff, error) {
	var st model.Staff
	err := row.Scan(&st.ID, &st.EmployeeID, &st.Name, &st.Role, &st.BranchID,
		&st.ConsultationFeeCents, &st.PasswordHash, &st.IsActive)
	if err != nil {
		return model.Staff{}, err
	}
	return st, nil
}
