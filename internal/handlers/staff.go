package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clinicbook/internal/lifecycle"
	"clinicbook/internal/sessions"
	"clinicbook/internal/storage"
)

// AppointmentLister lists a doctor's appointments, limited to one slot date
// when date is non-zero.
type AppointmentLister interface {
	ListDoctorAppointments(ctx context.Context, doctorID int64, date time.Time) ([]storage.AppointmentDetail, error)
}

type StaffHandler struct {
	svc    *lifecycle.Service
	store  AppointmentLister
	logger *slog.Logger
}

func NewStaffHandler(svc *lifecycle.Service, store AppointmentLister, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{svc: svc, store: store, logger: logger}
}

func (h *StaffHandler) DoctorAppointments(w http.ResponseWriter, r *http.Request) {
	actor, _ := sessions.ActorFromContext(r.Context())

	// Without a date param the full history is returned.
	var date time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	details, err := h.store.ListDoctorAppointments(r.Context(), actor.StaffID, date)
	if err != nil {
		h.logger.Error("list doctor appointments failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}

	out := make([]map[string]any, 0, len(details))
	for _, d := range details {
		out = append(out, map[string]any{
			"appointment_id":     d.ID,
			"appointment_number": d.AppointmentNumber,
			"patient_name":       d.PatientName,
			"patient_number":     d.PatientNumber,
			"date":               d.SlotDate.Format("2006-01-02"),
			"time":               d.SlotTime,
			"appointment_type":   d.AppointmentType,
			"status":             d.Status,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type statusUpdateRequest struct {
	Status            string `json:"status"`
	ConsultationNotes string `json:"consultation_notes"`
	Diagnosis         string `json:"diagnosis"`
}

// UpdateAppointmentStatus serves PUT /api/v1/appointments/{id}/status for the
// owning doctor. Allowed targets are completed and cancelled; both are
// terminal.
func (h *StaffHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	appointmentID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || appointmentID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	actor, _ := sessions.ActorFromContext(r.Context())

	switch strings.TrimSpace(req.Status) {
	case "completed":
		appt, err := h.svc.Complete(r.Context(), appointmentID, actor.StaffID, req.ConsultationNotes, req.Diagnosis)
		if h.writeLifecycleError(w, err) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"status":       appt.Status,
			"completed_at": appt.CompletedAt.UTC().Format(time.RFC3339),
		})
	case "cancelled":
		appt, err := h.svc.Cancel(r.Context(), appointmentID, actor.StaffID)
		if h.writeLifecycleError(w, err) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"status":       appt.Status,
			"cancelled_at": appt.CancelledAt.UTC().Format(time.RFC3339),
		})
	default:
		writeError(w, http.StatusBadRequest, "status must be completed or cancelled")
	}
}

// writeLifecycleError reports whether it wrote a response.
func (h *StaffHandler) writeLifecycleError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, lifecycle.ErrNotFound):
		writeError(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "Appointment cannot be updated")
	default:
		h.logger.Error("status update failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update appointment")
	}
	return true
}
