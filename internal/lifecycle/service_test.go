package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"clinicbook/internal/model"
	"clinicbook/internal/outbox"
)

type fakeDB struct {
	mu           sync.Mutex
	appointments map[int64]model.Appointment
	staff        map[int64]model.Staff
	charges      []model.Charge
	events       []outbox.Event
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		appointments: map[int64]model.Appointment{},
		staff:        map[int64]model.Staff{},
	}
}

func (db *fakeDB) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	appts := make(map[int64]model.Appointment, len(db.appointments))
	for k, v := range db.appointments {
		appts[k] = v
	}
	charges := append([]model.Charge(nil), db.charges...)
	events := append([]outbox.Event(nil), db.events...)

	if err := fn(ctx, &fakeTx{db: db}); err != nil {
		db.appointments = appts
		db.charges = charges
		db.events = events
		return err
	}
	return nil
}

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) GetAppointmentForDoctorForUpdate(_ context.Context, appointmentID, doctorID int64) (model.Appointment, error) {
	appt, ok := t.db.appointments[appointmentID]
	if !ok || appt.DoctorID != doctorID {
		return model.Appointment{}, pgx.ErrNoRows
	}
	return appt, nil
}

func (t *fakeTx) CompleteAppointment(_ context.Context, appointmentID int64, notes, diagnosis string) (time.Time, error) {
	appt, ok := t.db.appointments[appointmentID]
	if !ok || appt.Status != model.StatusScheduled {
		return time.Time{}, pgx.ErrNoRows
	}
	now := time.Now()
	appt.Status = model.StatusCompleted
	appt.ConsultationNotes = notes
	appt.Diagnosis = diagnosis
	appt.CompletedAt = &now
	t.db.appointments[appointmentID] = appt
	return now, nil
}

func (t *fakeTx) CancelAppointment(_ context.Context, appointmentID int64) (time.Time, error) {
	appt, ok := t.db.appointments[appointmentID]
	if !ok || appt.Status != model.StatusScheduled {
		return time.Time{}, pgx.ErrNoRows
	}
	now := time.Now()
	appt.Status = model.StatusCancelled
	appt.CancelledAt = &now
	t.db.appointments[appointmentID] = appt
	return now, nil
}

func (t *fakeTx) GetStaff(_ context.Context, id int64) (model.Staff, error) {
	st, ok := t.db.staff[id]
	if !ok {
		return model.Staff{}, pgx.ErrNoRows
	}
	return st, nil
}

func (t *fakeTx) InsertCharge(_ context.Context, c *model.Charge) (int64, error) {
	c.ID = int64(len(t.db.charges) + 1)
	c.CreatedAt = time.Now()
	t.db.charges = append(t.db.charges, *c)
	return c.ID, nil
}

func (t *fakeTx) InsertOutboxEvent(_ context.Context, evt outbox.Event) error {
	t.db.events = append(t.db.events, evt)
	return nil
}

func seed(db *fakeDB) {
	db.staff[10] = model.Staff{
		ID: 10, EmployeeID: "EMP010", Name: "Dr. Rahman",
		Role: model.RoleDoctor, BranchID: 1,
		ConsultationFeeCents: 50_00, IsActive: true,
	}
	db.appointments[1] = model.Appointment{
		ID: 1, AppointmentNumber: "GEN2405010001",
		PatientID: 7, DoctorID: 10, SlotID: 100,
		Status: model.StatusScheduled,
	}
}

func TestComplete(t *testing.T) {
	db := newFakeDB()
	seed(db)
	svc := NewService(db)

	appt, err := svc.Complete(context.Background(), 1, 10, "follow up in two weeks", "seasonal flu")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if appt.Status != model.StatusCompleted {
		t.Fatalf("status = %q, want completed", appt.Status)
	}
	if appt.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}
	if appt.ConsultationNotes != "follow up in two weeks" || appt.Diagnosis != "seasonal flu" {
		t.Fatalf("notes/diagnosis not stored verbatim: %+v", appt)
	}

	if len(db.charges) != 1 {
		t.Fatalf("charges = %d, want 1", len(db.charges))
	}
	if db.charges[0].AmountCents != 50_00 || db.charges[0].Status != model.ChargeUnpaid {
		t.Fatalf("charge = %+v", db.charges[0])
	}
	if len(db.events) != 1 || db.events[0].EventType != outbox.EventAppointmentCompleted {
		t.Fatalf("events = %+v", db.events)
	}
}

func TestCancel(t *testing.T) {
	db := newFakeDB()
	seed(db)
	svc := NewService(db)

	appt, err := svc.Cancel(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if appt.Status != model.StatusCancelled || appt.CancelledAt == nil {
		t.Fatalf("appt = %+v", appt)
	}
	if len(db.charges) != 0 {
		t.Fatal("cancellation must not record a charge")
	}
	if len(db.events) != 1 || db.events[0].EventType != outbox.EventAppointmentCancelled {
		t.Fatalf("events = %+v", db.events)
	}
}

func TestTransitionsAreTerminal(t *testing.T) {
	db := newFakeDB()
	seed(db)
	svc := NewService(db)

	if _, err := svc.Complete(context.Background(), 1, 10, "", ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), 1, 10); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel after complete: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.Complete(context.Background(), 1, 10, "again", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("complete twice: err = %v, want ErrInvalidTransition", err)
	}

	appt := db.appointments[1]
	if appt.Status != model.StatusCompleted || appt.ConsultationNotes != "" {
		t.Fatalf("terminal state mutated: %+v", appt)
	}
}

func TestOtherDoctorsAppointmentNotVisible(t *testing.T) {
	db := newFakeDB()
	seed(db)
	svc := NewService(db)

	if _, err := svc.Complete(context.Background(), 1, 99, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if db.appointments[1].Status != model.StatusScheduled {
		t.Fatal("appointment must be untouched")
	}
}

func TestCompleteWithoutFeeSkipsCharge(t *testing.T) {
	db := newFakeDB()
	seed(db)
	st := db.staff[10]
	st.ConsultationFeeCents = 0
	db.staff[10] = st
	svc := NewService(db)

	if _, err := svc.Complete(context.Background(), 1, 10, "", ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(db.charges) != 0 {
		t.Fatalf("charges = %d, want 0", len(db.charges))
	}
}
