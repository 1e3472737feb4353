package handler

import (
	"encoding/json"
	"net/http"

	"supportdesk/internal/auth"
	"supportdesk/internal/observability"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		observability.Logger().Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes a JSON error response in the {"error": "..."} shape
// every endpoint uses.
func writeError(w http.ResponseWriter, status int, message string) {
	auth.WriteError(w, status, message)
}
