package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "todolist"

// Metrics holds the todolist metric instruments. A nil *Metrics records
// nothing.
type Metrics struct {
	mutations metric.Int64Counter
	events    metric.Int64Counter
	removed   metric.Int64Counter
}

// NewMetrics creates all metric instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	m.mutations, err = meter.Int64Counter("todolist.mutations",
		metric.WithDescription("Successful write operations by entity and operation"))
	if err != nil {
		return nil, err
	}

	m.events, err = meter.Int64Counter("todolist.events",
		metric.WithDescription("Change events by subject and publish outcome"))
	if err != nil {
		return nil, err
	}

	m.removed, err = meter.Int64Counter("todolist.todos.removed",
		metric.WithDescription("Todos removed by bulk operations"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordMutation counts one successful write, e.g. ("todo", "create").
func (m *Metrics) RecordMutation(ctx context.Context, entity, op string) {
	if m == nil {
		return
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("op", op),
	))
}

// RecordEvent counts a change event with its outcome ("published",
// "failed" or "skipped").
func (m *Metrics) RecordEvent(ctx context.Context, subject, outcome string) {
	if m == nil {
		return
	}
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("subject", subject),
		attribute.String("outcome", outcome),
	))
}

// RecordRemoved counts todos removed by archive or clear-all.
func (m *Metrics) RecordRemoved(ctx context.Context, reason string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.removed.Add(ctx, n, metric.WithAttributes(attribute.String("reason", reason)))
}
