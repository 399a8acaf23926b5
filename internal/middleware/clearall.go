package middleware

import "net/http"

// ClearAllGate rejects every request with 403 unless enabled is true. It
// guards the destructive clear-all endpoint outside development.
func ClearAllGate(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"clearing all data is disabled (set admin.clear_all_enabled or TODOLIST_CLEAR_ALL_ENABLED)"}`))
		})
	}
}
