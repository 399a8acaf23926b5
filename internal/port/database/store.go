// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/Strob0t/todolist/internal/domain/tag"
	"github.com/Strob0t/todolist/internal/domain/todo"
)

// Store is the port interface for database operations.
//
// Every method that writes more than one row runs in a single transaction:
// either all of its writes commit or none do.
type Store interface {
	// Todos
	ListTodos(ctx context.Context) ([]todo.Todo, error)
	GetTodo(ctx context.Context, id int64) (*todo.Todo, error)
	// CreateTodo inserts t and links the given tags. Tag IDs that do not
	// resolve to an existing tag are skipped.
	CreateTodo(ctx context.Context, t *todo.Todo, tagIDs []int64) (*todo.Todo, error)
	// UpdateTodo writes every column of t. When replaceTags is true the tag
	// set is replaced by tagIDs; an unknown tag ID fails the whole update
	// with domain.ErrNotFound.
	UpdateTodo(ctx context.Context, t *todo.Todo, replaceTags bool, tagIDs []int64) (*todo.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
	// DeleteDoneTodos removes every todo with status done and returns how
	// many were removed.
	DeleteDoneTodos(ctx context.Context) (int64, error)

	// Tags
	ListTags(ctx context.Context) ([]tag.Tag, error)
	// CreateTag fails with domain.ErrConflict when the name is taken.
	CreateTag(ctx context.Context, name string) (*tag.Tag, error)
	// DeleteTag detaches the tag from every todo, then removes it.
	DeleteTag(ctx context.Context, id int64) error
	CountTags(ctx context.Context) (int64, error)

	// ClearAll deletes all join rows, todos and tags, in that order.
	ClearAll(ctx context.Context) error

	Ping(ctx context.Context) error
}
