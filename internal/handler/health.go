package handler

import (
	"context"
	"net/http"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheck handles GET /health. Liveness only; no dependencies touched.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// NewStatusHandler handles GET /api/v1/status, reporting service identity
// and database reachability.
func NewStatusHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "ok"
		if err := db.Health(r.Context()); err != nil {
			dbStatus = "unreachable"
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"service":  "supportdesk",
			"status":   "operational",
			"database": dbStatus,
		})
	}
}
