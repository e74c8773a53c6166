package reports

import (
	"context"
	"time"

	"clinicbook/libs/db"
)

// Repository serves the read-only aggregates behind the staff reports.
type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

type BranchSummaryRow struct {
	BranchID   int64  `json:"branch_id"`
	BranchName string `json:"branch_name"`
	Scheduled  int64  `json:"scheduled"`
	Completed  int64  `json:"completed"`
	Cancelled  int64  `json:"cancelled"`
	Total      int64  `json:"total"`
}

// BranchSummary counts appointments per branch for one slot date.
func (r *Repository) BranchSummary(ctx context.Context, date time.Time) ([]BranchSummaryRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.name,
			COUNT(*) FILTER (WHERE a.status = 'scheduled'),
			COUNT(*) FILTER (WHERE a.status = 'completed'),
			COUNT(*) FILTER (WHERE a.status = 'cancelled'),
			COUNT(a.id)
		FROM branches b
		JOIN staff d ON d.branch_id = b.id
		JOIN appointments a ON a.doctor_id = d.id
		JOIN time_slots ts ON ts.id = a.slot_id
		WHERE ts.slot_date = $1
		GROUP BY b.id, b.name
		ORDER BY b.name ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BranchSummaryRow
	for rows.Next() {
		var row BranchSummaryRow
		if err := rows.Scan(&row.BranchID, &row.BranchName,
			&row.Scheduled, &row.Completed, &row.Cancelled, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type DoctorRevenueRow struct {
	DoctorID     int64  `json:"doctor_id"`
	DoctorName   string `json:"doctor_name"`
	BranchName   string `json:"branch_name"`
	Completed    int64  `json:"completed_appointments"`
	RevenueCents int64  `json:"revenue_cents"`
}

// DoctorRevenue sums consultation charges (paid and unpaid) per doctor over
// completed appointments.
func (r *Repository) DoctorRevenue(ctx context.Context) ([]DoctorRevenueRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.name, b.name,
			COUNT(DISTINCT a.id),
			COALESCE(SUM(c.amount_cents), 0)
		FROM staff d
		JOIN branches b ON b.id = d.branch_id
		JOIN appointments a ON a.doctor_id = d.id AND a.status = 'completed'
		LEFT JOIN charges c ON c.appointment_id = a.id
		WHERE d.role = 'doctor'
		GROUP BY d.id, d.name, b.name
		ORDER BY 5 DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DoctorRevenueRow
	for rows.Next() {
		var row DoctorRevenueRow
		if err := rows.Scan(&row.DoctorID, &row.DoctorName, &row.BranchName,
			&row.Completed, &row.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type OutstandingBalanceRow struct {
	PatientID        int64  `json:"patient_id"`
	PatientNumber    string `json:"patient_number"`
	PatientName      string `json:"patient_name"`
	OutstandingCents int64  `json:"outstanding_cents"`
}

// OutstandingBalance lists patients with unpaid charges, largest first.
func (r *Repository) OutstandingBalance(ctx context.Context) ([]OutstandingBalanceRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.patient_number, p.name,
			COALESCE(SUM(c.amount_cents), 0)
		FROM patients p
		JOIN charges c ON c.patient_id = p.id AND c.status = 'unpaid'
		GROUP BY p.id, p.patient_number, p.name
		HAVING SUM(c.amount_cents) > 0
		ORDER BY 4 DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutstandingBalanceRow
	for rows.Next() {
		var row OutstandingBalanceRow
		if err := rows.Scan(&row.PatientID, &row.PatientNumber, &row.PatientName,
			&row.OutstandingCents); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
