package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clinicbook/internal/reports"
)

type ReportsHandler struct {
	repo   *reports.Repository
	logger *slog.Logger
}

func NewReportsHandler(repo *reports.Repository, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{repo: repo, logger: logger}
}

func (h *ReportsHandler) BranchSummary(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	rows, err := h.repo.BranchSummary(r.Context(), date)
	if err != nil {
		h.logger.Error("branch summary failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     date.Format("2006-01-02"),
		"branches": rows,
	})
}

func (h *ReportsHandler) DoctorRevenue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.DoctorRevenue(r.Context())
	if err != nil {
		h.logger.Error("doctor revenue failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctors": rows})
}

func (h *ReportsHandler) OutstandingBalance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.OutstandingBalance(r.Context())
	if err != nil {
		h.logger.Error("outstanding balance failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": rows})
}
