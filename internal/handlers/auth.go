package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clinicbook/internal/identifier"
	"clinicbook/internal/model"
	"clinicbook/internal/sessions"
	"clinicbook/internal/storage"
)

// AuthStore is the subset of storage the auth endpoints read and write.
type AuthStore interface {
	GetPatientByEmail(ctx context.Context, email string) (model.Patient, error)
	GetPatientByID(ctx context.Context, id int64) (model.Patient, error)
	GetStaffByEmployeeID(ctx context.Context, employeeID string) (model.Staff, error)
	GetStaffByID(ctx context.Context, id int64) (model.Staff, error)
	NextPatientSeq(ctx context.Context) (int64, error)
	CreatePatient(ctx context.Context, p *model.Patient) (int64, error)
}

// SessionIssuer issues and revokes sessions.
type SessionIssuer interface {
	Create(ctx context.Context, actor sessions.Actor) (string, error)
	Delete(ctx context.Context, token string) error
	TTL() time.Duration
}

type AuthHandler struct {
	store    AuthStore
	sessions SessionIssuer
	logger   *slog.Logger
}

func NewAuthHandler(store AuthStore, sessionStore SessionIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{store: store, sessions: sessionStore, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type staffLoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type patientPayload struct {
	ID            int64  `json:"id"`
	PatientNumber string `json:"patient_number"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

func patientToPayload(p model.Patient) patientPayload {
	return patientPayload{
		ID:            p.ID,
		PatientNumber: p.PatientNumber,
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
	}
}

// Login authenticates a patient. An unknown email, a wrong password, and an
// inactive account all produce the same 401 so none of them is
// distinguishable from the outside.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	patient, err := h.store.GetPatientByEmail(r.Context(), req.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("patient lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if err := verifyPassword(patient.PasswordHash, req.Password); err != nil || !patient.IsActive {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.sessions.Create(r.Context(), sessions.PatientActor(patient.ID))
	if err != nil {
		h.logger.Error("session create failed", "err", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	setSessionCookie(w, token, h.sessions.TTL())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"patient": patientToPayload(patient),
	})
}

func (h *AuthHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req staffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	if req.EmployeeID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "employee_id and password required")
		return
	}

	staff, err := h.store.GetStaffByEmployeeID(r.Context(), req.EmployeeID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("staff lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if err := verifyPassword(staff.PasswordHash, req.Password); err != nil || !staff.IsActive {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.sessions.Create(r.Context(), sessions.StaffActor(staff.ID, staff.Role, staff.BranchID))
	if err != nil {
		h.logger.Error("session create failed", "err", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	setSessionCookie(w, token, h.sessions.TTL())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"staff": map[string]any{
			"id":          staff.ID,
			"employee_id": staff.EmployeeID,
			"name":        staff.Name,
			"role":        staff.Role,
			"branch_id":   staff.BranchID,
		},
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password required")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	seq, err := h.store.NextPatientSeq(r.Context())
	if err != nil {
		h.logger.Error("patient sequence failed", "err", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	patient := model.Patient{
		PatientNumber: identifier.PatientNumber(seq),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		PasswordHash:  hash,
		IsActive:      true,
	}
	id, err := h.store.CreatePatient(r.Context(), &patient)
	if err != nil {
		if storage.IsConflict(err) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("patient create failed", "err", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	patient.ID = id

	token, err := h.sessions.Create(r.Context(), sessions.PatientActor(id))
	if err != nil {
		h.logger.Error("session create failed", "err", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	setSessionCookie(w, token, h.sessions.TTL())
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   token,
		"patient": patientToPayload(patient),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), sessions.TokenFromRequest(r)); err != nil {
		h.logger.Error("session delete failed", "err", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) SessionData(w http.ResponseWriter, r *http.Request) {
	actor, _ := sessions.ActorFromContext(r.Context())
	patient, err := h.store.GetPatientByID(r.Context(), actor.PatientID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeUnauthorized(w)
			return
		}
		h.logger.Error("patient lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load session data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patient": patientToPayload(patient)})
}

func (h *AuthHandler) StaffSessionData(w http.ResponseWriter, r *http.Request) {
	actor, _ := sessions.ActorFromContext(r.Context())
	staff, err := h.store.GetStaffByID(r.Context(), actor.StaffID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeUnauthorized(w)
			return
		}
		h.logger.Error("staff lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load session data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"staff": map[string]any{
			"id":          staff.ID,
			"employee_id": staff.EmployeeID,
			"name":        staff.Name,
			"role":        staff.Role,
			"branch_id":   staff.BranchID,
		},
	})
}

// setSessionCookie matches the cookie lifetime to the server-side session
// TTL so the two never disagree about when a session ends.
func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash string, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
