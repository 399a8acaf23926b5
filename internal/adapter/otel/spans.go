package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "todolist"

// StartSpan starts an internal span for a service operation such as
// "todo.update".
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TodoID is the span attribute for a todo id.
func TodoID(id int64) attribute.KeyValue { return attribute.Int64("todo.id", id) }

// TagID is the span attribute for a tag id.
func TagID(id int64) attribute.KeyValue { return attribute.Int64("tag.id", id) }
