package service

import (
	"context"
	"time"

	cfotel "github.com/Strob0t/todolist/internal/adapter/otel"
	"github.com/Strob0t/todolist/internal/domain/todo"
	"github.com/Strob0t/todolist/internal/port/database"
	"github.com/Strob0t/todolist/internal/port/messagequeue"
)

// ArchiveResult reports how many done todos an archive removed.
type ArchiveResult struct {
	Archived int64
}

// TodoService handles todo business logic.
type TodoService struct {
	store    database.Store
	notifier *Notifier
	metrics  *cfotel.Metrics
	now      func() time.Time
}

// NewTodoService creates a new TodoService. notifier and metrics may be nil.
func NewTodoService(store database.Store, notifier *Notifier, metrics *cfotel.Metrics) *TodoService {
	return &TodoService{store: store, notifier: notifier, metrics: metrics, now: time.Now}
}

// List returns all todos.
func (s *TodoService) List(ctx context.Context) ([]todo.Todo, error) {
	return s.store.ListTodos(ctx)
}

// Get returns a todo by ID.
func (s *TodoService) Get(ctx context.Context, id int64) (*todo.Todo, error) {
	return s.store.GetTodo(ctx, id)
}

// Create validates req and stores a new todo.
func (s *TodoService) Create(ctx context.Context, req *todo.CreateRequest) (_ *todo.Todo, err error) {
	ctx, span := cfotel.StartSpan(ctx, "todo.create")
	defer func() { cfotel.End(span, err) }()

	t, tagIDs, err := todo.New(req, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateTodo(ctx, t, tagIDs)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(cfotel.TodoID(created.ID))

	s.metrics.RecordMutation(ctx, "todo", "create")
	s.notifier.todoChanged(ctx, messagequeue.SubjectTodoCreated, created.ID, created)
	return created, nil
}

// Update applies the present fields of req to the todo with the given ID.
// An unknown tag ID fails the whole update and nothing is written.
func (s *TodoService) Update(ctx context.Context, id int64, req *todo.UpdateRequest) (_ *todo.Todo, err error) {
	ctx, span := cfotel.StartSpan(ctx, "todo.update", cfotel.TodoID(id))
	defer func() { cfotel.End(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.store.GetTodo(ctx, id)
	if err != nil {
		return nil, err
	}

	tagIDs, replaceTags, err := todo.Apply(t, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateTodo(ctx, t, replaceTags, tagIDs)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordMutation(ctx, "todo", "update")
	s.notifier.todoChanged(ctx, messagequeue.SubjectTodoUpdated, updated.ID, updated)
	return updated, nil
}

// Delete removes a todo and its tag links.
func (s *TodoService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := cfotel.StartSpan(ctx, "todo.delete", cfotel.TodoID(id))
	defer func() { cfotel.End(span, err) }()

	if err := s.store.DeleteTodo(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordMutation(ctx, "todo", "delete")
	s.notifier.todoChanged(ctx, messagequeue.SubjectTodoDeleted, id, nil)
	return nil
}

// ArchiveCompleted deletes every done todo. Zero matches is not an error.
func (s *TodoService) ArchiveCompleted(ctx context.Context) (_ *ArchiveResult, err error) {
	ctx, span := cfotel.StartSpan(ctx, "todo.archive_completed")
	defer func() { cfotel.End(span, err) }()

	n, err := s.store.DeleteDoneTodos(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordMutation(ctx, "todo", "archive")
	s.metrics.RecordRemoved(ctx, "archive", n)
	s.notifier.bulk(ctx, messagequeue.SubjectTodosArchived, n)
	return &ArchiveResult{Archived: n}, nil
}
