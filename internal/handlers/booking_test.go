package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinicbook/internal/booking"
	"clinicbook/internal/model"
	"clinicbook/internal/outbox"
	"clinicbook/internal/sessions"
)

// bookingRepo is a single-slot fake of the booking transaction surface.
type bookingRepo struct {
	slot   model.TimeSlot
	doctor model.Staff
	branch model.Branch
	seq    int64
	booked []model.Appointment
}

func (r *bookingRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx booking.Tx) error) error {
	before := *r
	if err := fn(ctx, (*bookingTx)(r)); err != nil {
		*r = before
		return err
	}
	return nil
}

type bookingTx bookingRepo

func (t *bookingTx) GetSlot(_ context.Context, id int64) (model.TimeSlot, error) {
	if id != t.slot.ID {
		return model.TimeSlot{}, errNoRows
	}
	return t.slot, nil
}

func (t *bookingTx) GetStaff(_ context.Context, id int64) (model.Staff, error) {
	if id != t.doctor.ID {
		return model.Staff{}, errNoRows
	}
	return t.doctor, nil
}

func (t *bookingTx) GetBranch(_ context.Context, id int64) (model.Branch, error) {
	if id != t.branch.ID {
		return model.Branch{}, errNoRows
	}
	return t.branch, nil
}

func (t *bookingTx) NextBookingSeq(_ context.Context, _ time.Time) (int64, error) {
	t.seq++
	return t.seq, nil
}

func (t *bookingTx) ClaimSlot(_ context.Context, slotID, doctorID int64) (bool, error) {
	if slotID != t.slot.ID || doctorID != t.slot.DoctorID || !t.slot.IsAvailable {
		return false, nil
	}
	t.slot.IsAvailable = false
	return true, nil
}

func (t *bookingTx) InsertAppointment(_ context.Context, appt *model.Appointment) (int64, error) {
	appt.ID = int64(len(t.booked) + 1)
	t.booked = append(t.booked, *appt)
	return appt.ID, nil
}

func (t *bookingTx) InsertOutboxEvent(_ context.Context, _ outbox.Event) error {
	return nil
}

func newBookingFixture() (*bookingRepo, *BookingHandler) {
	repo := &bookingRepo{
		slot:   model.TimeSlot{ID: 42, DoctorID: 5, SlotDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), SlotTime: "10:00", IsAvailable: true},
		doctor: model.Staff{ID: 5, Role: model.RoleDoctor, BranchID: 1, IsActive: true},
		branch: model.Branch{ID: 1, Name: "General"},
	}
	svc := booking.NewService(repo)
	h := NewBookingHandler(svc, nil, testLogger())
	return repo, h
}

func bookReq(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/book-appointment", strings.NewReader(body))
	return req.WithContext(sessions.WithActor(req.Context(), sessions.PatientActor(7)))
}

func TestBookAppointment_Success(t *testing.T) {
	repo, h := newBookingFixture()

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, bookReq(`{"doctor_id":5,"slot_id":42,"appointment_type":"consultation"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	number, _ := body["appointment_number"].(string)
	if !strings.HasPrefix(number, "GEN") || len(number) != 13 {
		t.Fatalf("appointment_number = %q", number)
	}
	if repo.slot.IsAvailable {
		t.Fatal("slot must be claimed")
	}
}

func TestBookAppointment_SlotTaken(t *testing.T) {
	repo, h := newBookingFixture()
	repo.slot.IsAvailable = false

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, bookReq(`{"doctor_id":5,"slot_id":42}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "Time slot not available" {
		t.Fatalf("error = %q, want %q", body["error"], "Time slot not available")
	}
}

func TestBookAppointment_ValidatesBody(t *testing.T) {
	_, h := newBookingFixture()

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, bookReq(`{"doctor_id":5}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.BookAppointment(rec, bookReq(`not json`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
