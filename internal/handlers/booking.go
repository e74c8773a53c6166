package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clinicbook/internal/booking"
	"clinicbook/internal/sessions"
	"clinicbook/internal/storage"
)

type BookingHandler struct {
	svc    *booking.Service
	store  *storage.Store
	logger *slog.Logger
}

func NewBookingHandler(svc *booking.Service, store *storage.Store, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, store: store, logger: logger}
}

type bookRequest struct {
	DoctorID        int64  `json:"doctor_id"`
	SlotID          int64  `json:"slot_id"`
	AppointmentType string `json:"appointment_type"`
}

func (h *BookingHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, _ := sessions.ActorFromContext(r.Context())

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.DoctorID <= 0 || req.SlotID <= 0 {
		writeError(w, http.StatusBadRequest, "doctor_id and slot_id are required")
		return
	}
	req.AppointmentType = strings.TrimSpace(req.AppointmentType)
	if req.AppointmentType == "" {
		req.AppointmentType = "consultation"
	}

	appt, err := h.svc.Book(r.Context(), booking.BookRequest{
		PatientID:       actor.PatientID,
		DoctorID:        req.DoctorID,
		SlotID:          req.SlotID,
		AppointmentType: req.AppointmentType,
	})
	switch {
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusBadRequest, msgSlotUnavailable)
		return
	case errors.Is(err, booking.ErrDoctorSlotMismatch):
		writeError(w, http.StatusBadRequest, "Selected slot does not belong to this doctor")
		return
	case errors.Is(err, booking.ErrDoctorNotFound):
		writeError(w, http.StatusBadRequest, "Doctor not found")
		return
	case err != nil:
		h.logger.Error("booking failed", "err", err, "patient_id", actor.PatientID, "slot_id", req.SlotID)
		writeError(w, http.StatusInternalServerError, "Booking failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":            true,
		"appointment_id":     appt.ID,
		"appointment_number": appt.AppointmentNumber,
		"status":             appt.Status,
	})
}

func (h *BookingHandler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	actor, _ := sessions.ActorFromContext(r.Context())

	details, err := h.store.ListPatientAppointments(r.Context(), actor.PatientID)
	if err != nil {
		h.logger.Error("list patient appointments failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}

	out := make([]map[string]any, 0, len(details))
	for _, d := range details {
		item := map[string]any{
			"appointment_id":     d.ID,
			"appointment_number": d.AppointmentNumber,
			"doctor_name":        d.DoctorName,
			"branch_name":        d.BranchName,
			"date":               d.SlotDate.Format("2006-01-02"),
			"time":               d.SlotTime,
			"appointment_type":   d.AppointmentType,
			"status":             d.Status,
		}
		if d.Status == "completed" {
			item["consultation_notes"] = d.ConsultationNotes
			item["diagnosis"] = d.Diagnosis
			if d.CompletedAt != nil {
				item["completed_at"] = d.CompletedAt.UTC().Format(time.RFC3339)
			}
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, out)
}
