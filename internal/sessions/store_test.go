package sessions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := TokenFromRequest(req); got != "" {
		t.Fatalf("token = %q, want empty", got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	if got := TokenFromRequest(req); got != "abc123" {
		t.Fatalf("token = %q, want abc123", got)
	}

	// The cookie wins over the header.
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
	if got := TokenFromRequest(req); got != "cookie-token" {
		t.Fatalf("token = %q, want cookie-token", got)
	}
}

func TestActorRoundTrip(t *testing.T) {
	staff := StaffActor(10, "doctor", 3)
	payload, err := json.Marshal(staff)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Actor
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.IsStaff() || got.StaffID != 10 || got.Role != "doctor" || got.BranchID != 3 {
		t.Fatalf("actor = %+v", got)
	}
	if got.IsPatient() {
		t.Fatal("staff actor must not pass the patient check")
	}
}
