package identifier

import (
	"testing"
	"time"
)

func TestAppointmentNumber(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	got := AppointmentNumber("GEN", day, 1)
	if got != "GEN2405010001" {
		t.Fatalf("got %q, want GEN2405010001", got)
	}

	got = AppointmentNumber("car", day, 123)
	if got != "CAR2405010123" {
		t.Fatalf("got %q, want CAR2405010123", got)
	}
}

func TestAppointmentNumber_SequenceWidth(t *testing.T) {
	day := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	got := AppointmentNumber("GEN", day, 9999)
	if got != "GEN2612319999" {
		t.Fatalf("got %q, want GEN2612319999", got)
	}
	if len(got) != 13 {
		t.Fatalf("appointment number length = %d, want 13", len(got))
	}
}

func TestBranchCode(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"General", "GEN"},
		{"Cardiology Center", "CAR"},
		{"St. Mary", "STM"},
		{"Ob", "OBX"},
		{"", "XXX"},
	}
	for _, tc := range cases {
		if got := BranchCode(tc.name); got != tc.want {
			t.Errorf("BranchCode(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestPatientNumber(t *testing.T) {
	if got := PatientNumber(1); got != "PAT0001" {
		t.Fatalf("got %q, want PAT0001", got)
	}
	if got := PatientNumber(12345); got != "PAT12345" {
		t.Fatalf("got %q, want PAT12345", got)
	}
}
