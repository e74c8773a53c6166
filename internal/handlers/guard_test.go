package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinicbook/internal/model"
	"clinicbook/internal/sessions"
)

type fakeResolver struct {
	tokens map[string]sessions.Actor
}

func (f *fakeResolver) Get(_ context.Context, token string) (sessions.Actor, error) {
	actor, ok := f.tokens[token]
	if !ok {
		return sessions.Actor{}, sessions.ErrNotFound
	}
	return actor, nil
}

func newTestGuard() *Guard {
	return NewGuard(&fakeResolver{tokens: map[string]sessions.Actor{
		"patient-token": sessions.PatientActor(7),
		"doctor-token":  sessions.StaffActor(10, model.RoleDoctor, 1),
		"recept-token":  sessions.StaffActor(11, model.RoleReceptionist, 1),
	}})
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] != "Unauthorized: Please log in" {
		t.Fatalf("error = %q, want %q", body["error"], "Unauthorized: Please log in")
	}
}

func TestGuardPatient_NoToken(t *testing.T) {
	guard := newTestGuard()

	called := false
	h := guard.Patient(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/my-appointments", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assertUnauthorized(t, rec)
	if called {
		t.Fatal("handler must not run for an unauthenticated request")
	}
}

func TestGuardPatient_AdmitsPatient(t *testing.T) {
	guard := newTestGuard()

	var got sessions.Actor
	h := guard.Patient(func(w http.ResponseWriter, r *http.Request) {
		got, _ = sessions.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/my-appointments", nil)
	req.Header.Set("Authorization", "Bearer patient-token")
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !got.IsPatient() || got.PatientID != 7 {
		t.Fatalf("actor = %+v", got)
	}
}

func TestGuardScopesAreMutuallyExclusive(t *testing.T) {
	guard := newTestGuard()
	deny := func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}

	// Staff token on a patient endpoint.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/my-appointments", nil)
	req.Header.Set("Authorization", "Bearer doctor-token")
	rec := httptest.NewRecorder()
	guard.Patient(deny)(rec, req)
	assertUnauthorized(t, rec)

	// Patient token on a staff endpoint.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/doctor-appointments", nil)
	req.Header.Set("Authorization", "Bearer patient-token")
	rec = httptest.NewRecorder()
	guard.Staff(deny)(rec, req)
	assertUnauthorized(t, rec)
}

func TestGuardDoctor_RejectsOtherRoles(t *testing.T) {
	guard := newTestGuard()

	h := guard.Doctor(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/appointments/1/status", nil)
	req.Header.Set("Authorization", "Bearer recept-token")
	rec := httptest.NewRecorder()
	h(rec, req)

	assertUnauthorized(t, rec)
}

func TestGuardReadsCookie(t *testing.T) {
	guard := newTestGuard()

	h := guard.Patient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session-data", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "patient-token"})
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
