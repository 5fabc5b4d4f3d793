package httpx

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	healthResponse    = `{"status":"ok"}`
	readinessDeadline = 2 * time.Second
)

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

// readyHandler runs every check and reports 503 naming the first dependency that fails.
func readyHandler(checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessDeadline)
		defer cancel()
		for name, check := range checks {
			if err := check(ctx); err != nil {
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":     "unavailable",
					"dependency": name,
				})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
