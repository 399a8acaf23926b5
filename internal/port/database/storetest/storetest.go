// Package storetest provides a behaviour suite shared by every
// database.Store implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/todolist/internal/domain"
	"github.com/Strob0t/todolist/internal/domain/todo"
	"github.com/Strob0t/todolist/internal/port/database"
)

// Run executes the suite. newStore must return a store with no todos or tags.
func Run(t *testing.T, newStore func(t *testing.T) database.Store) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s database.Store)
	}{
		{"CreateAndGetTodo", testCreateAndGetTodo},
		{"CreateTodoSkipsUnknownTags", testCreateTodoSkipsUnknownTags},
		{"ListTodosOrdered", testListTodosOrdered},
		{"GetTodoNotFound", testGetTodoNotFound},
		{"UpdateTodoFields", testUpdateTodoFields},
		{"UpdateTodoReplaceTags", testUpdateTodoReplaceTags},
		{"UpdateTodoUnknownTagWritesNothing", testUpdateTodoUnknownTagWritesNothing},
		{"UpdateTodoNotFound", testUpdateTodoNotFound},
		{"DeleteTodo", testDeleteTodo},
		{"DeleteDoneTodos", testDeleteDoneTodos},
		{"CreateTagConflict", testCreateTagConflict},
		{"DeleteTagDetaches", testDeleteTagDetaches},
		{"DeleteTagNotFound", testDeleteTagNotFound},
		{"ClearAll", testClearAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

var created = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newTodo(title string, status todo.Status) *todo.Todo {
	return &todo.Todo{
		Title:     title,
		Status:    status,
		Completed: status == todo.StatusDone,
		Priority:  todo.PriorityMedium,
		CreatedAt: created,
	}
}

func mustTag(t *testing.T, s database.Store, name string) int64 {
	t.Helper()
	tg, err := s.CreateTag(context.Background(), name)
	if err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	return tg.ID
}

func mustTodo(t *testing.T, s database.Store, td *todo.Todo, tagIDs ...int64) *todo.Todo {
	t.Helper()
	out, err := s.CreateTodo(context.Background(), td, tagIDs)
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	return out
}

func tagIDs(td *todo.Todo) []int64 {
	ids := make([]int64, len(td.Tags))
	for i, tg := range td.Tags {
		ids[i] = tg.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testCreateAndGetTodo(t *testing.T, s database.Store) {
	ctx := context.Background()
	home := mustTag(t, s, "home")
	work := mustTag(t, s, "work")

	due := todo.NewDate(2025, time.March, 10)
	td := newTodo("write report", todo.StatusDoing)
	td.Priority = todo.PriorityHigh
	td.DueDate = &due

	// Tags come back ordered by id regardless of request order.
	out := mustTodo(t, s, td, work, home)
	if out.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := s.GetTodo(ctx, out.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "write report" || got.Status != todo.StatusDoing || got.Priority != todo.PriorityHigh {
		t.Errorf("unexpected todo: %+v", got)
	}
	if got.Completed {
		t.Error("expected completed=false")
	}
	if got.DueDate == nil || got.DueDate.String() != "2025-03-10" {
		t.Errorf("due date = %v, want 2025-03-10", got.DueDate)
	}
	if !got.CreatedAt.Equal(created) || got.CreatedAt.Location() != time.UTC {
		t.Errorf("created_at = %v, want %v UTC", got.CreatedAt, created)
	}
	if !equalIDs(tagIDs(got), []int64{home, work}) {
		t.Errorf("tags = %v, want [%d %d]", tagIDs(got), home, work)
	}
}

func testCreateTodoSkipsUnknownTags(t *testing.T, s database.Store) {
	home := mustTag(t, s, "home")

	out := mustTodo(t, s, newTodo("a", todo.StatusTodo), home, home+1000)
	if !equalIDs(tagIDs(out), []int64{home}) {
		t.Errorf("tags = %v, want [%d]", tagIDs(out), home)
	}

	bare := mustTodo(t, s, newTodo("b", todo.StatusTodo))
	if bare.Tags == nil || len(bare.Tags) != 0 {
		t.Errorf("expected empty non-nil tags, got %#v", bare.Tags)
	}
	if bare.DueDate != nil {
		t.Errorf("expected nil due date, got %v", bare.DueDate)
	}
}

func testListTodosOrdered(t *testing.T, s database.Store) {
	ctx := context.Background()

	empty, err := s.ListTodos(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}

	tg := mustTag(t, s, "x")
	first := mustTodo(t, s, newTodo("first", todo.StatusTodo), tg)
	second := mustTodo(t, s, newTodo("second", todo.StatusDone))

	list, err := s.ListTodos(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
	if len(list[0].Tags) != 1 || len(list[1].Tags) != 0 {
		t.Errorf("unexpected tags: %+v / %+v", list[0].Tags, list[1].Tags)
	}
	if !list[1].Completed {
		t.Error("expected done todo to be completed")
	}
}

func testGetTodoNotFound(t *testing.T, s database.Store) {
	_, err := s.GetTodo(context.Background(), 999999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testUpdateTodoFields(t *testing.T, s database.Store) {
	ctx := context.Background()
	tg := mustTag(t, s, "keep")
	out := mustTodo(t, s, newTodo("old", todo.StatusTodo), tg)

	due := todo.NewDate(2026, time.January, 2)
	out.Title = "new"
	out.Status = todo.StatusDone
	out.Completed = true
	out.Priority = todo.PriorityLow
	out.DueDate = &due

	got, err := s.UpdateTodo(ctx, out, false, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "new" || got.Status != todo.StatusDone || !got.Completed || got.Priority != todo.PriorityLow {
		t.Errorf("unexpected todo: %+v", got)
	}
	if got.DueDate == nil || got.DueDate.String() != "2026-01-02" {
		t.Errorf("due date = %v", got.DueDate)
	}
	if !equalIDs(tagIDs(got), []int64{tg}) {
		t.Errorf("tags changed without replaceTags: %v", tagIDs(got))
	}

	got.DueDate = nil
	cleared, err := s.UpdateTodo(ctx, got, false, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cleared.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", cleared.DueDate)
	}
}

func testUpdateTodoReplaceTags(t *testing.T, s database.Store) {
	ctx := context.Background()
	a := mustTag(t, s, "a")
	b := mustTag(t, s, "b")
	out := mustTodo(t, s, newTodo("t", todo.StatusTodo), a)

	got, err := s.UpdateTodo(ctx, out, true, []int64{b})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !equalIDs(tagIDs(got), []int64{b}) {
		t.Errorf("tags = %v, want [%d]", tagIDs(got), b)
	}

	got, err = s.UpdateTodo(ctx, got, true, []int64{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("expected empty tags, got %#v", got.Tags)
	}
}

func testUpdateTodoUnknownTagWritesNothing(t *testing.T, s database.Store) {
	ctx := context.Background()
	a := mustTag(t, s, "a")
	out := mustTodo(t, s, newTodo("before", todo.StatusTodo), a)

	changed := *out
	changed.Title = "after"
	_, err := s.UpdateTodo(ctx, &changed, true, []int64{a, a + 1000})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "tag" || nf.ID != a+1000 {
		t.Errorf("expected the unknown tag to be named, got %v", err)
	}

	got, err := s.GetTodo(ctx, out.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "before" {
		t.Errorf("title written despite failure: %q", got.Title)
	}
	if !equalIDs(tagIDs(got), []int64{a}) {
		t.Errorf("tags changed despite failure: %v", tagIDs(got))
	}
}

func testUpdateTodoNotFound(t *testing.T, s database.Store) {
	td := newTodo("ghost", todo.StatusTodo)
	td.ID = 999999
	_, err := s.UpdateTodo(context.Background(), td, false, nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testDeleteTodo(t *testing.T, s database.Store) {
	ctx := context.Background()
	tg := mustTag(t, s, "a")
	out := mustTodo(t, s, newTodo("t", todo.StatusTodo), tg)

	if err := s.DeleteTodo(ctx, out.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTodo(ctx, out.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteTodo(ctx, out.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("deleting a todo must keep its tags, got %v", tags)
	}
}

func testDeleteDoneTodos(t *testing.T, s database.Store) {
	ctx := context.Background()

	n, err := s.DeleteDoneTodos(ctx)
	if err != nil {
		t.Fatalf("archive empty: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 archived, got %d", n)
	}

	tg := mustTag(t, s, "a")
	mustTodo(t, s, newTodo("done 1", todo.StatusDone), tg)
	mustTodo(t, s, newTodo("done 2", todo.StatusDone))
	open := mustTodo(t, s, newTodo("open", todo.StatusDoing), tg)

	n, err = s.DeleteDoneTodos(ctx)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 archived, got %d", n)
	}

	list, err := s.ListTodos(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != open.ID {
		t.Fatalf("expected only the open todo to remain, got %+v", list)
	}
}

func testCreateTagConflict(t *testing.T, s database.Store) {
	ctx := context.Background()
	mustTag(t, s, "work")

	if _, err := s.CreateTag(ctx, "work"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// Names are case-sensitive.
	if _, err := s.CreateTag(ctx, "Work"); err != nil {
		t.Fatalf("expected distinct case to succeed, got %v", err)
	}

	n, err := s.CountTags(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 tags, got %d", n)
	}
}

func testDeleteTagDetaches(t *testing.T, s database.Store) {
	ctx := context.Background()
	a := mustTag(t, s, "a")
	b := mustTag(t, s, "b")
	out := mustTodo(t, s, newTodo("t", todo.StatusTodo), a, b)

	if err := s.DeleteTag(ctx, a); err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	got, err := s.GetTodo(ctx, out.ID)
	if err != nil {
		t.Fatalf("todo must survive tag deletion: %v", err)
	}
	if !equalIDs(tagIDs(got), []int64{b}) {
		t.Errorf("tags = %v, want [%d]", tagIDs(got), b)
	}
}

func testDeleteTagNotFound(t *testing.T, s database.Store) {
	if err := s.DeleteTag(context.Background(), 999999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testClearAll(t *testing.T, s database.Store) {
	ctx := context.Background()
	tg := mustTag(t, s, "a")
	mustTodo(t, s, newTodo("t", todo.StatusTodo), tg)

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	// Clearing an empty store is fine.
	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("clear all twice: %v", err)
	}

	todos, err := s.ListTodos(ctx)
	if err != nil {
		t.Fatalf("list todos: %v", err)
	}
	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(todos) != 0 || len(tags) != 0 {
		t.Fatalf("expected empty store, got %d todos and %d tags", len(todos), len(tags))
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
