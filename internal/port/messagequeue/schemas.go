package messagequeue

import (
	"time"

	"github.com/Strob0t/todolist/internal/domain/tag"
	"github.com/Strob0t/todolist/internal/domain/todo"
)

// TodoEventPayload is the schema for todos.created, todos.updated and
// todos.deleted messages. Todo is omitted for deletions.
type TodoEventPayload struct {
	EventID    string     `json:"event_id"`
	OccurredAt time.Time  `json:"occurred_at"`
	TodoID     int64      `json:"todo_id"`
	Todo       *todo.Todo `json:"todo,omitempty"`
}

// TagEventPayload is the schema for tags.created and tags.deleted messages.
type TagEventPayload struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	TagID      int64     `json:"tag_id"`
	Tag        *tag.Tag  `json:"tag,omitempty"`
}

// BulkEventPayload is the schema for todos.archived and data.cleared messages.
type BulkEventPayload struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Count      int64     `json:"count"`
}
