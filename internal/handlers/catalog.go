package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clinicbook/internal/model"
	"clinicbook/internal/storage"
)

type CatalogHandler struct {
	store  *storage.Store
	logger *slog.Logger
}

func NewCatalogHandler(store *storage.Store, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, logger: logger}
}

func (h *CatalogHandler) Branches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.store.ListBranches(r.Context())
	if err != nil {
		h.logger.Error("list branches failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load branches")
		return
	}

	out := make([]map[string]any, 0, len(branches))
	for _, b := range branches {
		out = append(out, map[string]any{
			"id":       b.ID,
			"name":     b.Name,
			"location": b.Location,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	var branchID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("branch_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid branch_id")
			return
		}
		branchID = id
	}

	doctors, err := h.store.ListDoctors(r.Context(), branchID)
	if err != nil {
		h.logger.Error("list doctors failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load doctors")
		return
	}

	out := make([]map[string]any, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, map[string]any{
			"id":          d.ID,
			"name":        d.Name,
			"branch_id":   d.BranchID,
			"branch_name": d.BranchName,
			"specialties": d.Specialties,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("doctorId")), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "doctorId is required")
		return
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.store.ListAvailableSlots(r.Context(), doctorID, date)
	if err != nil {
		h.logger.Error("list slots failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load slots")
		return
	}

	writeJSON(w, http.StatusOK, slotsToPayload(slots))
}

func slotsToPayload(slots []model.TimeSlot) []map[string]any {
	out := make([]map[string]any, 0, len(slots))
	for _, s := range slots {
		out = append(out, map[string]any{
			"slot_id":          s.ID,
			"time":             s.SlotTime,
			"duration_minutes": s.DurationMinutes,
		})
	}
	return out
}
