// Package broadcast defines the port the service layer uses to push change
// events to live clients.
package broadcast

import "context"

// Broadcaster fans a change event out to every connected client. The event
// type is the change-event subject, e.g. "todos.updated". Delivery is best
// effort: a client that cannot be written to is dropped.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
