package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeQueue bool

func (f fakeQueue) IsConnected() bool { return bool(f) }

type fakeHub int

func (f fakeHub) ConnectionCount() int { return int(f) }

type fakeBreaker string

func (f fakeBreaker) State() string { return string(f) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name         string
		deps         HealthDeps
		wantCode     int
		wantStatus   string
		wantNATS     string
		wantBreaker  string
		wantWSClient int
	}{
		{
			name:        "store only",
			deps:        HealthDeps{Store: fakePinger{}},
			wantCode:    http.StatusOK,
			wantStatus:  "ok",
			wantNATS:    "disabled",
			wantBreaker: "disabled",
		},
		{
			name: "all connected",
			deps: HealthDeps{
				Store:   fakePinger{},
				Queue:   fakeQueue(true),
				Hub:     fakeHub(3),
				Breaker: fakeBreaker("closed"),
			},
			wantCode:     http.StatusOK,
			wantStatus:   "ok",
			wantNATS:     "connected",
			wantBreaker:  "closed",
			wantWSClient: 3,
		},
		{
			name:        "nats down stays ok",
			deps:        HealthDeps{Store: fakePinger{}, Queue: fakeQueue(false), Breaker: fakeBreaker("open")},
			wantCode:    http.StatusOK,
			wantStatus:  "ok",
			wantNATS:    "disconnected",
			wantBreaker: "open",
		},
		{
			name:        "database down",
			deps:        HealthDeps{Store: fakePinger{err: errors.New("refused")}},
			wantCode:    http.StatusServiceUnavailable,
			wantStatus:  "degraded",
			wantNATS:    "disabled",
			wantBreaker: "disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthHandler(tt.deps)(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var got healthStatus
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got.Status != tt.wantStatus || got.NATS != tt.wantNATS || got.Breaker != tt.wantBreaker || got.WSClients != tt.wantWSClient {
				t.Errorf("unexpected health %+v", got)
			}
		})
	}
}
