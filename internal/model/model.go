package model

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	RoleDoctor       = "doctor"
	RoleReceptionist = "receptionist"
	RoleAdmin        = "admin"
)

const (
	ChargeUnpaid = "unpaid"
	ChargePaid   = "paid"
)

type Branch struct {
	ID       int64
	Name     string
	Location string
}

type Staff struct {
	ID                   int64
	EmployeeID           string
	Name                 string
	Role                 string
	BranchID             int64
	ConsultationFeeCents int64
	PasswordHash         string
	IsActive             bool
}

type Patient struct {
	ID            int64
	PatientNumber string
	Name          string
	Email         string
	Phone         string
	PasswordHash  string
	IsActive      bool
}

type Specialty struct {
	ID   int64
	Name string
}

// Doctor is the staff projection served on the public catalog, with
// specialties aggregated per doctor.
type Doctor struct {
	ID          int64
	Name        string
	BranchID    int64
	BranchName  string
	Specialties []string
}

type TimeSlot struct {
	ID              int64
	DoctorID        int64
	SlotDate        time.Time // date component only, UTC midnight
	SlotTime        string    // "HH:MM"
	DurationMinutes int
	IsAvailable     bool
}

type Appointment struct {
	ID                int64
	AppointmentNumber string
	PatientID         int64
	DoctorID          int64
	SlotID            int64
	AppointmentType   string
	Status            string
	ConsultationNotes string
	Diagnosis         string
	CreatedAt         time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
}

type Charge struct {
	ID            int64
	AppointmentID int64
	PatientID     int64
	DoctorID      int64
	AmountCents   int64
	Status        string
	CreatedAt     time.Time
	PaidAt        *time.Time
}
