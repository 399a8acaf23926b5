package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/todolist/internal/middleware"
)

// mockCache is an in-memory cache.Cache.
type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}

func makeTestHandler(counter *int, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*counter++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"call":%d}`, *counter)
	})
}

func doRequest(h http.Handler, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_NoHeader(t *testing.T) {
	counter := 0
	c := newMockCache()
	handler := middleware.Idempotency(c, time.Hour)(makeTestHandler(&counter, http.StatusCreated))

	rec := doRequest(handler, http.MethodPost, "/todos", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if counter != 1 {
		t.Fatalf("expected 1 call, got %d", counter)
	}
	if len(c.keys()) != 0 {
		t.Fatal("expected nothing cached without a key")
	}
}

func TestIdempotency_FirstRequestStoresResponse(t *testing.T) {
	counter := 0
	c := newMockCache()
	handler := middleware.Idempotency(c, time.Hour)(makeTestHandler(&counter, http.StatusCreated))

	doRequest(handler, http.MethodPost, "/todos", "key-1")

	keys := c.keys()
	if len(keys) != 1 {
		t.Fatalf("expected 1 cached entry, got %d", len(keys))
	}
	if !strings.HasPrefix(keys[0], "idem.") || strings.ContainsAny(keys[0], ": ") {
		t.Errorf("unexpected cache key %q", keys[0])
	}
	if c.ttls[keys[0]] != time.Hour {
		t.Errorf("expected ttl 1h, got %v", c.ttls[keys[0]])
	}
}

func TestIdempotency_SecondRequestReplays(t *testing.T) {
	counter := 0
	c := newMockCache()
	handler := middleware.Idempotency(c, time.Hour)(makeTestHandler(&counter, http.StatusCreated))

	rec1 := doRequest(handler, http.MethodPost, "/todos", "key-2")
	rec2 := doRequest(handler, http.MethodPost, "/todos", "key-2")

	if counter != 1 {
		t.Fatalf("expected handler called once, got %d", counter)
	}
	if rec2.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec2.Code)
	}
	if rec2.Body.String() != rec1.Body.String() {
		t.Errorf("replayed body %q, want %q", rec2.Body.String(), rec1.Body.String())
	}
	if rec2.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("expected Idempotent-Replayed header on replay")
	}
	if rec2.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected replayed content type, got %q", rec2.Header().Get("Content-Type"))
	}
}

func TestIdempotency_KeyScopedToMethodAndPath(t *testing.T) {
	counter := 0
	c := newMockCache()
	handler := middleware.Idempotency(c, time.Hour)(makeTestHandler(&counter, http.StatusOK))

	doRequest(handler, http.MethodPut, "/todos/1", "same")
	doRequest(handler, http.MethodPut, "/todos/2", "same")
	doRequest(handler, http.MethodDelete, "/todos/1", "same")

	if counter != 3 {
		t.Fatalf("expected 3 calls, got %d", counter)
	}
}

func TestIdempotency_GETIgnored(t *testing.T) {
	counter := 0
	c := newMockCache()
	handler := middleware.Idempotency(c, time.Hour)(makeTestHandler(&counter, http.StatusOK))

	doRequest(handler, http.MethodGet, "/todos", "key-get")
	doRequest(handler, http.MethodGet, "/todos", "key-get")

	if counter != 2 {
		t.Fatalf("expected handler called twice, got %d", counter)
	}
}

func TestIdempotency_DifferentKeys(t *testing.T) {
	counter := 0
	c := newMockCache()
	handler := middleware.Idempotency(c, time.Hour)(makeTestHandler(&counter, http.StatusCreated))

	doRequest(handler, http.MethodPost, "/todos", "key-a")
	doRequest(handler, http.MethodPost, "/todos", "key-b")

	if counter != 2 {
		t.Fatalf("expected 2 calls, got %d", counter)
	}
}

func TestIdempotency_ServerErrorNotCached(t *testing.T) {
	counter := 0
	c := newMockCache()
	handler := middleware.Idempotency(c, time.Hour)(makeTestHandler(&counter, http.StatusInternalServerError))

	doRequest(handler, http.MethodPost, "/clear_all_data", "retry")
	doRequest(handler, http.MethodPost, "/clear_all_data", "retry")

	if counter != 2 {
		t.Fatalf("expected retry after 500 to run again, got %d calls", counter)
	}
}

func TestIdempotency_CacheErrorFallsThrough(t *testing.T) {
	counter := 0
	c := newMockCache()
	c.getErr = errors.New("cache down")
	handler := middleware.Idempotency(c, time.Hour)(makeTestHandler(&counter, http.StatusCreated))

	rec := doRequest(handler, http.MethodPost, "/todos", "k")
	if rec.Code != http.StatusCreated || counter != 1 {
		t.Fatalf("expected request served despite cache error, got %d after %d calls", rec.Code, counter)
	}
}

func TestIdempotency_KeyTooLong(t *testing.T) {
	counter := 0
	handler := middleware.Idempotency(newMockCache(), time.Hour)(makeTestHandler(&counter, http.StatusCreated))

	rec := doRequest(handler, http.MethodPost, "/todos", strings.Repeat("k", 256))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if counter != 0 {
		t.Fatal("handler must not run for a rejected key")
	}
}
