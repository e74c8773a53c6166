package handlers

import (
	"encoding/json"
	"net/http"
)

// Client-facing messages are deliberately generic; the detailed cause is
// logged server-side only.
const (
	msgUnauthorized    = "Unauthorized: Please log in"
	msgSlotUnavailable = "Time slot not available"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, msgUnauthorized)
}
