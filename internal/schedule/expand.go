package schedule

import "time"

// Window is a provisioned working window for a doctor on one day.
type Window struct {
	Date            time.Time // date only
	Start           string    // "HH:MM"
	End             string    // "HH:MM", exclusive
	DurationMinutes int
}

// Expand returns the discrete slot start times ("HH:MM") within
// [Start, End) where a consultation of DurationMinutes fits entirely.
// Slots step by the duration; a trailing remainder shorter than one
// consultation is dropped.
func Expand(w Window) []string {
	duration := time.Duration(w.DurationMinutes) * time.Minute
	if duration <= 0 {
		return nil
	}

	start, err := parseClock(w.Start)
	if err != nil {
		return nil
	}
	end, err := parseClock(w.End)
	if err != nil {
		return nil
	}
	if end <= start {
		return nil
	}

	var times []string
	for t := start; t+duration <= end; t += duration {
		times = append(times, formatClock(t))
	}
	return times
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatClock(d time.Duration) string {
	t := time.Time{}.Add(d)
	return t.Format("15:04")
}
