package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/Strob0t/todolist/internal/domain"
	"github.com/Strob0t/todolist/internal/domain/todo"
	"github.com/Strob0t/todolist/internal/port/messagequeue"
)

func newTodoService(store *mockStore) (*TodoService, *mockBroadcaster) {
	hub := &mockBroadcaster{}
	svc := NewTodoService(store, NewNotifier(hub, nil, nil, nil), nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600)) }
	return svc, hub
}

func TestTodoServiceCreate(t *testing.T) {
	store := newMockStore()
	work, _ := store.CreateTag(context.Background(), "work")
	svc, hub := newTodoService(store)

	got, err := svc.Create(context.Background(), &todo.CreateRequest{
		Title:  "write report",
		TagIDs: []int64{work.ID, 99, work.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != todo.StatusTodo || got.Priority != todo.PriorityMedium || got.Completed {
		t.Errorf("unexpected defaults: %+v", got)
	}
	if got.CreatedAt.Location() != time.UTC {
		t.Errorf("expected created_at in UTC, got %v", got.CreatedAt)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != work.ID {
		t.Errorf("expected only the existing tag, got %+v", got.Tags)
	}
	if types := hub.types(); !slices.Equal(types, []string{messagequeue.SubjectTodoCreated}) {
		t.Errorf("broadcast types = %v", types)
	}
}

func TestTodoServiceCreateValidation(t *testing.T) {
	svc, hub := newTodoService(newMockStore())

	_, err := svc.Create(context.Background(), &todo.CreateRequest{Status: "done"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(hub.types()) != 0 {
		t.Error("event broadcast for a rejected create")
	}
}

func TestTodoServiceCreateStoreError(t *testing.T) {
	store := newMockStore()
	store.createTodoErr = errors.New("disk full")
	svc, hub := newTodoService(store)

	if _, err := svc.Create(context.Background(), &todo.CreateRequest{Title: "x"}); err == nil {
		t.Fatal("expected store error")
	}
	if len(hub.types()) != 0 {
		t.Error("event broadcast for a failed create")
	}
}

func TestTodoServiceUpdate(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	a, _ := store.CreateTag(ctx, "a")
	b, _ := store.CreateTag(ctx, "b")
	svc, hub := newTodoService(store)

	created, err := svc.Create(ctx, &todo.CreateRequest{Title: "x", TagIDs: []int64{a.ID}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var req todo.UpdateRequest
	body := `{"completed":true,"priority":"high","tag_ids":[` + jsonInt(b.ID) + `]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, err := svc.Update(ctx, created.ID, &req)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != todo.StatusDone || !got.Completed {
		t.Errorf("expected done/completed, got %q/%v", got.Status, got.Completed)
	}
	if got.Priority != todo.PriorityHigh {
		t.Errorf("expected high priority, got %q", got.Priority)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != b.ID {
		t.Errorf("expected tags replaced by b, got %+v", got.Tags)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", created.CreatedAt, got.CreatedAt)
	}

	want := []string{messagequeue.SubjectTodoCreated, messagequeue.SubjectTodoUpdated}
	if types := hub.types(); !slices.Equal(types, want) {
		t.Errorf("broadcast types = %v, want %v", types, want)
	}
}

func TestTodoServiceUpdateUnknownTag(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc, _ := newTodoService(store)

	created, _ := svc.Create(ctx, &todo.CreateRequest{Title: "keep"})
	req := &todo.UpdateRequest{Title: todo.Some("changed"), TagIDs: todo.Some([]int64{42})}

	_, err := svc.Update(ctx, created.ID, req)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, _ := svc.Get(ctx, created.ID)
	if got.Title != "keep" {
		t.Errorf("title written despite failed update: %q", got.Title)
	}
}

func TestTodoServiceUpdateErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTodoService(newMockStore())

	if _, err := svc.Update(ctx, 7, &todo.UpdateRequest{Title: todo.Some("x")}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown todo, got %v", err)
	}

	created, _ := svc.Create(ctx, &todo.CreateRequest{Title: "x"})
	bad := &todo.UpdateRequest{Status: todo.Some(todo.Status("archived"))}
	if _, err := svc.Update(ctx, created.ID, bad); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	// Validation runs before the lookup.
	if _, err := svc.Update(ctx, 999, bad); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown todo with bad body, got %v", err)
	}
}

func TestTodoServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc, hub := newTodoService(newMockStore())

	created, _ := svc.Create(ctx, &todo.CreateRequest{Title: "x"})
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	types := hub.types()
	if types[len(types)-1] != messagequeue.SubjectTodoDeleted {
		t.Errorf("last event = %q, want %q", types[len(types)-1], messagequeue.SubjectTodoDeleted)
	}
}

func TestTodoServiceArchiveCompleted(t *testing.T) {
	ctx := context.Background()
	svc, hub := newTodoService(newMockStore())

	res, err := svc.ArchiveCompleted(ctx)
	if err != nil {
		t.Fatalf("archive empty: %v", err)
	}
	if res.Archived != 0 {
		t.Errorf("expected 0 archived, got %d", res.Archived)
	}

	for _, s := range []todo.Status{todo.StatusDone, todo.StatusDoing, todo.StatusDone} {
		if _, err := svc.Create(ctx, &todo.CreateRequest{Title: "x", Status: s}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err = svc.ArchiveCompleted(ctx)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if res.Archived != 2 {
		t.Errorf("expected 2 archived, got %d", res.Archived)
	}

	left, _ := svc.List(ctx)
	if len(left) != 1 || left[0].Status != todo.StatusDoing {
		t.Errorf("expected the doing todo to remain, got %+v", left)
	}

	last := hub.calls[len(hub.calls)-1]
	p, ok := last.payload.(messagequeue.BulkEventPayload)
	if last.eventType != messagequeue.SubjectTodosArchived || !ok || p.Count != 2 {
		t.Errorf("unexpected archive event: %+v", last)
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
