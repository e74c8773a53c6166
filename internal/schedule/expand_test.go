package schedule

import (
	"reflect"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpand_Basic(t *testing.T) {
	got := Expand(Window{
		Date:            day(2024, 5, 1),
		Start:           "09:00",
		End:             "11:00",
		DurationMinutes: 30,
	})
	want := []string{"09:00", "09:30", "10:00", "10:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExpand_TrailingRemainderDropped(t *testing.T) {
	got := Expand(Window{
		Date:            day(2024, 5, 1),
		Start:           "09:00",
		End:             "10:15",
		DurationMinutes: 30,
	})
	// 10:00 would run until 10:30, past the window end.
	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExpand_DegenerateWindows(t *testing.T) {
	cases := []Window{
		{Start: "10:00", End: "10:00", DurationMinutes: 30},
		{Start: "11:00", End: "10:00", DurationMinutes: 30},
		{Start: "09:00", End: "17:00", DurationMinutes: 0},
		{Start: "bogus", End: "17:00", DurationMinutes: 30},
	}
	for _, w := range cases {
		if got := Expand(w); got != nil {
			t.Errorf("Expand(%+v) = %v, want nil", w, got)
		}
	}
}

func TestExpand_ExactFit(t *testing.T) {
	got := Expand(Window{
		Start:           "09:00",
		End:             "09:30",
		DurationMinutes: 30,
	})
	want := []string{"09:00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
