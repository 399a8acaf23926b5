// Package todo defines the Todo domain entity and its update rules.
package todo

import (
	"time"

	"github.com/Strob0t/todolist/internal/domain/tag"
)

// Status is the workflow state of a todo.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Priority ranks a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// MaxTitleLength bounds titles to the column width.
const MaxTitleLength = 200

// Todo is a single task on the list.
type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Status    Status    `json:"status"`
	Priority  Priority  `json:"priority"`
	DueDate   *Date     `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []tag.Tag `json:"tags"`
}

// CreateRequest holds the fields accepted when creating a todo.
type CreateRequest struct {
	Title    string   `json:"title"`
	TagIDs   []int64  `json:"tag_ids"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
	DueDate  string   `json:"due_date"`
}

// UpdateRequest holds a partial update. Only fields present in the JSON
// body are applied.
type UpdateRequest struct {
	Title     Field[string]   `json:"title"`
	Completed Field[bool]     `json:"completed"`
	Status    Field[Status]   `json:"status"`
	Priority  Field[Priority] `json:"priority"`
	DueDate   Field[string]   `json:"due_date"`
	TagIDs    Field[[]int64]  `json:"tag_ids"`
}

// ArchiveResult summarizes a bulk archive of completed todos.
type ArchiveResult struct {
	Message       string `json:"message"`
	ArchivedCount int64  `json:"archived_count"`
}
