package http

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDeps are the components reported by /health. Nil fields are
// reported as disabled.
type HealthDeps struct {
	Store   Pinger
	Queue   interface{ IsConnected() bool }
	Hub     interface{ ConnectionCount() int }
	Breaker interface{ State() string }
}

type healthStatus struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	NATS         string `json:"nats"`
	Breaker      string `json:"breaker"`
	WSClients    int    `json:"ws_clients"`
	CheckedAtUTC string `json:"checked_at"`
}

// HealthHandler returns an http.HandlerFunc that reports service health.
// Only the database decides the status code; NATS is optional.
func HealthHandler(deps HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{
			Status:       "ok",
			Database:     "ok",
			NATS:         "disabled",
			Breaker:      "disabled",
			CheckedAtUTC: time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if deps.Store == nil || deps.Store.Ping(ctx) != nil {
			status.Status = "degraded"
			status.Database = "unreachable"
			code = http.StatusServiceUnavailable
		}

		if deps.Queue != nil {
			status.NATS = "disconnected"
			if deps.Queue.IsConnected() {
				status.NATS = "connected"
			}
		}
		if deps.Breaker != nil {
			status.Breaker = deps.Breaker.State()
		}
		if deps.Hub != nil {
			status.WSClients = deps.Hub.ConnectionCount()
		}

		writeJSON(w, code, status)
	}
}
