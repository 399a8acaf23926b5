package otel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Strob0t/todolist/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.OTel{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordMutation(ctx, "todo", "create")
	m.RecordMutation(ctx, "todo", "create")
	m.RecordEvent(ctx, "todos.created", "published")
	m.RecordRemoved(ctx, "archive", 3)
	m.RecordRemoved(ctx, "archive", 0)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}

	if totals["todolist.mutations"] != 2 {
		t.Errorf("mutations = %d, want 2", totals["todolist.mutations"])
	}
	if totals["todolist.events"] != 1 {
		t.Errorf("events = %d, want 1", totals["todolist.events"])
	}
	if totals["todolist.todos.removed"] != 3 {
		t.Errorf("removed = %d, want 3", totals["todolist.todos.removed"])
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordMutation(context.Background(), "tag", "delete")
	m.RecordEvent(context.Background(), "tags.deleted", "skipped")
	m.RecordRemoved(context.Background(), "clear_all", 5)
}

func TestEndRecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, span := tp.Tracer("test").Start(context.Background(), "todo.update")
	End(span, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	if spans[0].Status().Description != "boom" {
		t.Errorf("status = %+v", spans[0].Status())
	}
}

func TestHTTPMiddlewarePassesThrough(t *testing.T) {
	h := HTTPMiddleware("todolist")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", http.NoBody))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
}
