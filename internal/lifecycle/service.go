package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"clinicbook/internal/model"
	"clinicbook/internal/outbox"
	"clinicbook/internal/storage"
)

var (
	ErrNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned when an appointment is already in a
	// terminal state. Completed and cancelled never transition again.
	ErrInvalidTransition = errors.New("appointment is not in a state that can be updated")
)

type Tx interface {
	GetAppointmentForDoctorForUpdate(ctx context.Context, appointmentID, doctorID int64) (model.Appointment, error)
	CompleteAppointment(ctx context.Context, appointmentID int64, notes, diagnosis string) (time.Time, error)
	CancelAppointment(ctx context.Context, appointmentID int64) (time.Time, error)
	GetStaff(ctx context.Context, id int64) (model.Staff, error)
	InsertCharge(ctx context.Context, c *model.Charge) (int64, error)
	InsertOutboxEvent(ctx context.Context, evt outbox.Event) error
}

type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Complete moves a scheduled appointment to completed, stores the doctor's
// notes and diagnosis verbatim, and records the consultation charge at the
// doctor's current fee. The appointment row is locked first and the update
// itself is guarded on status, so a concurrent transition loses cleanly.
func (s *Service) Complete(ctx context.Context, appointmentID, doctorID int64, notes, diagnosis string) (model.Appointment, error) {
	var appt model.Appointment

	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		appt, err = s.loadScheduled(ctx, tx, appointmentID, doctorID)
		if err != nil {
			return err
		}

		completedAt, err := tx.CompleteAppointment(ctx, appointmentID, notes, diagnosis)
		if err != nil {
			if storage.IsNotFound(err) {
				return ErrInvalidTransition
			}
			return err
		}
		appt.Status = model.StatusCompleted
		appt.ConsultationNotes = notes
		appt.Diagnosis = diagnosis
		appt.CompletedAt = &completedAt

		doctor, err := tx.GetStaff(ctx, doctorID)
		if err != nil {
			return err
		}
		if doctor.ConsultationFeeCents > 0 {
			charge := model.Charge{
				AppointmentID: appt.ID,
				PatientID:     appt.PatientID,
				DoctorID:      doctorID,
				AmountCents:   doctor.ConsultationFeeCents,
				Status:        model.ChargeUnpaid,
			}
			if _, err := tx.InsertCharge(ctx, &charge); err != nil {
				return err
			}
		}

		return s.insertEvent(ctx, tx, outbox.EventAppointmentCompleted, appt)
	})
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// Cancel moves a scheduled appointment to cancelled. The claimed slot is not
// released; freeing cancelled slots is a manual scheduling action.
func (s *Service) Cancel(ctx context.Context, appointmentID, doctorID int64) (model.Appointment, error) {
	var appt model.Appointment

	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		appt, err = s.loadScheduled(ctx, tx, appointmentID, doctorID)
		if err != nil {
			return err
		}

		cancelledAt, err := tx.CancelAppointment(ctx, appointmentID)
		if err != nil {
			if storage.IsNotFound(err) {
				return ErrInvalidTransition
			}
			return err
		}
		appt.Status = model.StatusCancelled
		appt.CancelledAt = &cancelledAt

		return s.insertEvent(ctx, tx, outbox.EventAppointmentCancelled, appt)
	})
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (s *Service) loadScheduled(ctx context.Context, tx Tx, appointmentID, doctorID int64) (model.Appointment, error) {
	appt, err := tx.GetAppointmentForDoctorForUpdate(ctx, appointmentID, doctorID)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Appointment{}, ErrNotFound
		}
		return model.Appointment{}, err
	}
	if appt.Status != model.StatusScheduled {
		return model.Appointment{}, ErrInvalidTransition
	}
	return appt, nil
}

func (s *Service) insertEvent(ctx context.Context, tx Tx, eventType string, appt model.Appointment) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id":     appt.ID,
		"appointment_number": appt.AppointmentNumber,
		"patient_id":         appt.PatientID,
		"doctor_id":          appt.DoctorID,
		"status":             appt.Status,
	})
	if err != nil {
		return err
	}
	return tx.InsertOutboxEvent(ctx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   strconv.FormatInt(appt.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	})
}
