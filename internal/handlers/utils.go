package handlers

import (
	"encoding/json"
	"net/http"

	"media-calendar/internal/logging"
)

// respond writes v as a JSON body with the given status code. A nil v
// sends headers only, which is what HEAD probes expect.
func respond(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	// The status line is already out; an encode failure can only be logged.
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// respondError writes {"error": message}.
func respondError(w http.ResponseWriter, code int, message string) {
	respond(w, code, map[string]string{"error": message})
}

// respondStatus writes {"status": status}.
func respondStatus(w http.ResponseWriter, code int, status string) {
	respond(w, code, map[string]string{"status": status})
}
