// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and consuming change events.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject filter.
	// The returned function stops the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (func(), error)

	// Close shuts down the queue connection.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// Subject constants for the change events published by the service layer.
const (
	SubjectTodoCreated   = "todos.created"
	SubjectTodoUpdated   = "todos.updated"
	SubjectTodoDeleted   = "todos.deleted"
	SubjectTodosArchived = "todos.archived"
	SubjectTagCreated    = "tags.created"
	SubjectTagDeleted    = "tags.deleted"
	SubjectDataCleared   = "data.cleared"
)

// StreamSubjects lists the subject filters a stream must capture to receive
// every change event.
var StreamSubjects = []string{"todos.>", "tags.>", "data.>"}

// Nop is a Queue that discards every message. It is used when no broker
// is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }

func (Nop) Subscribe(context.Context, string, Handler) (func(), error) {
	return func() {}, nil
}

func (Nop) Close() error      { return nil }
func (Nop) IsConnected() bool { return false }
