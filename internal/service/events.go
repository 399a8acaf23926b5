// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cfotel "github.com/Strob0t/todolist/internal/adapter/otel"
	"github.com/Strob0t/todolist/internal/domain/tag"
	"github.com/Strob0t/todolist/internal/domain/todo"
	"github.com/Strob0t/todolist/internal/logger"
	"github.com/Strob0t/todolist/internal/port/broadcast"
	"github.com/Strob0t/todolist/internal/port/messagequeue"
	"github.com/Strob0t/todolist/internal/resilience"
)

// Event outcomes recorded by the todolist.events counter.
const (
	outcomePublished = "published"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

// Notifier fans a change event out to websocket clients and the message
// queue. Both sinks are optional; a failed publish never fails the request
// that caused it.
type Notifier struct {
	hub     broadcast.Broadcaster
	queue   messagequeue.Queue
	breaker *resilience.Breaker
	metrics *cfotel.Metrics
	now     func() time.Time
}

// NewNotifier creates a Notifier. Any argument may be nil.
func NewNotifier(hub broadcast.Broadcaster, queue messagequeue.Queue, breaker *resilience.Breaker, metrics *cfotel.Metrics) *Notifier {
	return &Notifier{
		hub:     hub,
		queue:   queue,
		breaker: breaker,
		metrics: metrics,
		now:     time.Now,
	}
}

func (n *Notifier) todoChanged(ctx context.Context, subject string, id int64, t *todo.Todo) {
	if n == nil {
		return
	}
	n.emit(ctx, subject, messagequeue.TodoEventPayload{
		EventID:    uuid.NewString(),
		OccurredAt: n.now().UTC(),
		TodoID:     id,
		Todo:       t,
	})
}

func (n *Notifier) tagChanged(ctx context.Context, subject string, id int64, t *tag.Tag) {
	if n == nil {
		return
	}
	n.emit(ctx, subject, messagequeue.TagEventPayload{
		EventID:    uuid.NewString(),
		OccurredAt: n.now().UTC(),
		TagID:      id,
		Tag:        t,
	})
}

func (n *Notifier) bulk(ctx context.Context, subject string, count int64) {
	if n == nil {
		return
	}
	n.emit(ctx, subject, messagequeue.BulkEventPayload{
		EventID:    uuid.NewString(),
		OccurredAt: n.now().UTC(),
		Count:      count,
	})
}

func (n *Notifier) emit(ctx context.Context, subject string, payload any) {
	if n.hub != nil {
		n.hub.BroadcastEvent(ctx, subject, payload)
	}

	if n.queue == nil || !n.queue.IsConnected() {
		n.metrics.RecordEvent(ctx, subject, outcomeSkipped)
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.From(ctx).Error("marshal change event", "subject", subject, "error", err)
		n.metrics.RecordEvent(ctx, subject, outcomeFailed)
		return
	}

	publish := func() error { return n.queue.Publish(ctx, subject, data) }
	if n.breaker != nil {
		err = n.breaker.Execute(publish)
	} else {
		err = publish()
	}
	if err != nil {
		logger.From(ctx).Warn("publish change event", "subject", subject, "error", err)
		n.metrics.RecordEvent(ctx, subject, outcomeFailed)
		return
	}
	n.metrics.RecordEvent(ctx, subject, outcomePublished)
	slog.Debug("change event published", "subject", subject)
}
