package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Strob0t/todolist/internal/domain"
	"github.com/Strob0t/todolist/internal/domain/tag"
	"github.com/Strob0t/todolist/internal/domain/todo"
	"github.com/Strob0t/todolist/internal/port/database"
	"github.com/Strob0t/todolist/internal/port/messagequeue"
)

var _ database.Store = (*mockStore)(nil)

// mockStore is an in-memory database.Store.
type mockStore struct {
	todos  []todo.Todo
	tags   []tag.Tag
	links  map[int64][]int64
	nextID int64

	// Error hooks: set these to inject failures.
	createTodoErr error
	updateTodoErr error
	clearErr      error
}

func newMockStore() *mockStore {
	return &mockStore{links: map[int64][]int64{}}
}

func (m *mockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockStore) withTags(t todo.Todo) todo.Todo {
	t.Tags = []tag.Tag{}
	for _, tg := range m.tags {
		if slices.Contains(m.links[t.ID], tg.ID) {
			t.Tags = append(t.Tags, tg)
		}
	}
	return t
}

func (m *mockStore) hasTag(id int64) bool {
	return slices.ContainsFunc(m.tags, func(t tag.Tag) bool { return t.ID == id })
}

func (m *mockStore) ListTodos(_ context.Context) ([]todo.Todo, error) {
	out := make([]todo.Todo, 0, len(m.todos))
	for _, t := range m.todos {
		out = append(out, m.withTags(t))
	}
	return out, nil
}

func (m *mockStore) GetTodo(_ context.Context, id int64) (*todo.Todo, error) {
	for _, t := range m.todos {
		if t.ID == id {
			got := m.withTags(t)
			return &got, nil
		}
	}
	return nil, fmt.Errorf("get todo %d: %w", id, domain.ErrNotFound)
}

func (m *mockStore) CreateTodo(ctx context.Context, t *todo.Todo, tagIDs []int64) (*todo.Todo, error) {
	if m.createTodoErr != nil {
		return nil, m.createTodoErr
	}
	row := *t
	row.ID = m.id()
	m.todos = append(m.todos, row)
	for _, id := range tagIDs {
		if m.hasTag(id) {
			m.links[row.ID] = append(m.links[row.ID], id)
		}
	}
	return m.GetTodo(ctx, row.ID)
}

func (m *mockStore) UpdateTodo(ctx context.Context, t *todo.Todo, replaceTags bool, tagIDs []int64) (*todo.Todo, error) {
	if m.updateTodoErr != nil {
		return nil, m.updateTodoErr
	}
	i := slices.IndexFunc(m.todos, func(x todo.Todo) bool { return x.ID == t.ID })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	if replaceTags {
		for _, id := range tagIDs {
			if !m.hasTag(id) {
				return nil, fmt.Errorf("tag %d: %w", id, domain.ErrNotFound)
			}
		}
		m.links[t.ID] = slices.Clone(tagIDs)
	}
	row := *t
	row.Tags = nil
	m.todos[i] = row
	return m.GetTodo(ctx, t.ID)
}

func (m *mockStore) DeleteTodo(_ context.Context, id int64) error {
	i := slices.IndexFunc(m.todos, func(x todo.Todo) bool { return x.ID == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	m.todos = slices.Delete(m.todos, i, i+1)
	delete(m.links, id)
	return nil
}

func (m *mockStore) DeleteDoneTodos(_ context.Context) (int64, error) {
	var n int64
	m.todos = slices.DeleteFunc(m.todos, func(t todo.Todo) bool {
		if t.Status == todo.StatusDone {
			delete(m.links, t.ID)
			n++
			return true
		}
		return false
	})
	return n, nil
}

func (m *mockStore) ListTags(_ context.Context) ([]tag.Tag, error) {
	return slices.Clone(m.tags), nil
}

func (m *mockStore) CreateTag(_ context.Context, name string) (*tag.Tag, error) {
	for _, t := range m.tags {
		if t.Name == name {
			return nil, fmt.Errorf("create tag %q: %w", name, domain.ErrConflict)
		}
	}
	t := tag.Tag{ID: m.id(), Name: name}
	m.tags = append(m.tags, t)
	return &t, nil
}

func (m *mockStore) DeleteTag(_ context.Context, id int64) error {
	i := slices.IndexFunc(m.tags, func(t tag.Tag) bool { return t.ID == id })
	if i < 0 {
		return domain.ErrNotFound
	}
	m.tags = slices.Delete(m.tags, i, i+1)
	for todoID, ids := range m.links {
		m.links[todoID] = slices.DeleteFunc(ids, func(x int64) bool { return x == id })
	}
	return nil
}

func (m *mockStore) CountTags(_ context.Context) (int64, error) {
	return int64(len(m.tags)), nil
}

func (m *mockStore) ClearAll(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.todos, m.tags = nil, nil
	m.links = map[int64][]int64{}
	return nil
}

func (m *mockStore) Ping(_ context.Context) error { return nil }

type broadcastCall struct {
	eventType string
	payload   any
}

type mockBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (m *mockBroadcaster) BroadcastEvent(_ context.Context, eventType string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, broadcastCall{eventType, payload})
}

func (m *mockBroadcaster) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.eventType
	}
	return out
}

var errPublish = errors.New("broker unavailable")

type published struct {
	subject string
	data    []byte
}

type mockQueue struct {
	mu           sync.Mutex
	connected    bool
	publishErr   error
	messages     []published
	publishCalls int
}

func (m *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishCalls++
	if m.publishErr != nil {
		return m.publishErr
	}
	if err := messagequeue.Validate(subject, data); err != nil {
		return err
	}
	m.messages = append(m.messages, published{subject, data})
	return nil
}

func (m *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (m *mockQueue) Close() error { return nil }

func (m *mockQueue) IsConnected() bool { return m.connected }
