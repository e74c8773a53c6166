package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"clinicbook/internal/identifier"
	"clinicbook/internal/model"
	"clinicbook/internal/outbox"
	"clinicbook/internal/storage"
)

var (
	// ErrSlotUnavailable covers both a missing slot and one already taken;
	// callers present the two identically.
	ErrSlotUnavailable = errors.New("time slot not available")

	// ErrDoctorSlotMismatch means the slot exists but belongs to another doctor.
	ErrDoctorSlotMismatch = errors.New("slot does not belong to doctor")

	ErrDoctorNotFound = errors.New("doctor not found")
)

// Tx is the set of write operations a booking needs inside one transaction.
type Tx interface {
	GetSlot(ctx context.Context, id int64) (model.TimeSlot, error)
	GetStaff(ctx context.Context, id int64) (model.Staff, error)
	GetBranch(ctx context.Context, id int64) (model.Branch, error)
	NextBookingSeq(ctx context.Context, day time.Time) (int64, error)
	ClaimSlot(ctx context.Context, slotID, doctorID int64) (bool, error)
	InsertAppointment(ctx context.Context, appt *model.Appointment) (int64, error)
	InsertOutboxEvent(ctx context.Context, evt outbox.Event) error
}

// Repository runs a function transactionally; every step inside commits or
// rolls back as one unit.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type BookRequest struct {
	PatientID       int64
	DoctorID        int64
	SlotID          int64
	AppointmentType string
}

// Book claims the slot and creates the appointment in a single transaction.
//
// The slot is read first so an already-taken slot fails fast, but the claim
// UPDATE is the arbiter: under concurrency every transaction that loses the
// claim gets ErrSlotUnavailable regardless of what it read. Any failure after
// the claim rolls the whole transaction back, releasing the slot.
func (s *Service) Book(ctx context.Context, req BookRequest) (model.Appointment, error) {
	var appt model.Appointment

	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		slot, err := tx.GetSlot(ctx, req.SlotID)
		if err != nil {
			if storage.IsNotFound(err) {
				return ErrSlotUnavailable
			}
			return err
		}
		if slot.DoctorID != req.DoctorID {
			return ErrDoctorSlotMismatch
		}
		if !slot.IsAvailable {
			return ErrSlotUnavailable
		}

		doctor, err := tx.GetStaff(ctx, req.DoctorID)
		if err != nil {
			if storage.IsNotFound(err) {
				return ErrDoctorNotFound
			}
			return err
		}
		if doctor.Role != model.RoleDoctor || !doctor.IsActive {
			return ErrDoctorNotFound
		}

		branch, err := tx.GetBranch(ctx, doctor.BranchID)
		if err != nil {
			return err
		}

		today := s.now().UTC().Truncate(24 * time.Hour)
		seq, err := tx.NextBookingSeq(ctx, today)
		if err != nil {
			return err
		}
		number := identifier.AppointmentNumber(identifier.BranchCode(branch.Name), today, seq)

		claimed, err := tx.ClaimSlot(ctx, req.SlotID, req.DoctorID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrSlotUnavailable
		}

		appt = model.Appointment{
			AppointmentNumber: number,
			PatientID:         req.PatientID,
			DoctorID:          req.DoctorID,
			SlotID:            req.SlotID,
			AppointmentType:   req.AppointmentType,
			Status:            model.StatusScheduled,
		}
		if _, err := tx.InsertAppointment(ctx, &appt); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"appointment_id":     appt.ID,
			"appointment_number": appt.AppointmentNumber,
			"patient_id":         appt.PatientID,
			"doctor_id":          appt.DoctorID,
			"slot_id":            appt.SlotID,
			"appointment_type":   appt.AppointmentType,
		})
		if err != nil {
			return err
		}
		return tx.InsertOutboxEvent(ctx, outbox.Event{
			AggregateType: "appointment",
			AggregateID:   strconv.FormatInt(appt.ID, 10),
			EventType:     outbox.EventAppointmentBooked,
			Payload:       payload,
		})
	})
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}
