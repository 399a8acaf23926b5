package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Strob0t/todolist/internal/domain"
	"github.com/Strob0t/todolist/internal/domain/tag"
	"github.com/Strob0t/todolist/internal/domain/todo"
)

// Store implements database.Store on SQLite.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a Store on an open database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

type todoRow struct {
	ID        int64          `db:"id"`
	Title     string         `db:"title"`
	Completed bool           `db:"completed"`
	Status    string         `db:"status"`
	Priority  string         `db:"priority"`
	DueDate   sql.NullString `db:"due_date"`
	CreatedAt string         `db:"created_at"`
}

func (r *todoRow) toDomain() (todo.Todo, error) {
	t := todo.Todo{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		Status:    todo.Status(r.Status),
		Priority:  todo.Priority(r.Priority),
		Tags:      []tag.Tag{},
	}
	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("todo %d created_at: %w", r.ID, err)
	}
	t.CreatedAt = created.UTC()
	if r.DueDate.Valid {
		d, err := todo.ParseDate(r.DueDate.String)
		if err != nil {
			return todo.Todo{}, fmt.Errorf("todo %d due_date: %w", r.ID, err)
		}
		t.DueDate = &d
	}
	return t, nil
}

func dueDateArg(d *todo.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

const todoColumns = `id, title, completed, status, priority, due_date, created_at`

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// ListTodos returns all todos ordered by id, each with its tags.
func (s *Store) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	var rows []todoRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, `SELECT `+todoColumns+` FROM todos ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	todos := make([]todo.Todo, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := attachTags(ctx, s.db, todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// GetTodo returns one todo with its tags.
func (s *Store) GetTodo(ctx context.Context, id int64) (*todo.Todo, error) {
	return getTodo(ctx, s.db, id)
}

func getTodo(ctx context.Context, q querier, id int64) (*todo.Todo, error) {
	var row todoRow
	if err := sqlx.GetContext(ctx, q, &row, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get todo %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	t, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	list := []todo.Todo{t}
	if err := attachTags(ctx, q, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// attachTags loads the tags of every todo in one query, ordered by tag id.
func attachTags(ctx context.Context, q querier, todos []todo.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	ids := make([]int64, len(todos))
	index := make(map[int64]int, len(todos))
	for i := range todos {
		ids[i] = todos[i].ID
		index[todos[i].ID] = i
	}

	query, args, err := sqlx.In(
		`SELECT tt.todo_id, tg.id, tg.name
		 FROM todo_tags tt JOIN tags tg ON tg.id = tt.tag_id
		 WHERE tt.todo_id IN (?)
		 ORDER BY tt.todo_id, tg.id`, ids)
	if err != nil {
		return fmt.Errorf("build tag query: %w", err)
	}

	var links []struct {
		TodoID int64 `db:"todo_id"`
		tag.Tag
	}
	if err := sqlx.SelectContext(ctx, q, &links, query, args...); err != nil {
		return fmt.Errorf("load todo tags: %w", err)
	}
	for _, l := range links {
		if i, ok := index[l.TodoID]; ok {
			todos[i].Tags = append(todos[i].Tags, l.Tag)
		}
	}
	return nil
}

// CreateTodo inserts t and links the existing tags among tagIDs.
func (s *Store) CreateTodo(ctx context.Context, t *todo.Todo, tagIDs []int64) (*todo.Todo, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx,
		`INSERT INTO todos (title, completed, status, priority, due_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Title, t.Completed, string(t.Status), string(t.Priority), dueDateArg(t.DueDate),
		t.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	if len(tagIDs) > 0 {
		query, args, err := sqlx.In(
			`INSERT OR IGNORE INTO todo_tags (todo_id, tag_id)
			 SELECT ?, id FROM tags WHERE id IN (?)`, id, tagIDs)
		if err != nil {
			return nil, fmt.Errorf("build link query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("link tags for todo %d: %w", id, err)
		}
	}

	created, err := getTodo(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create todo: %w", err)
	}
	return created, nil
}

// UpdateTodo writes every column of t and, when replaceTags is set, swaps
// its tag set for tagIDs. All of it commits or none of it does.
func (s *Store) UpdateTodo(ctx context.Context, t *todo.Todo, replaceTags bool, tagIDs []int64) (*todo.Todo, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx,
		`UPDATE todos
		 SET title = ?, completed = ?, status = ?, priority = ?, due_date = ?
		 WHERE id = ?`,
		t.Title, t.Completed, string(t.Status), string(t.Priority), dueDateArg(t.DueDate), t.ID)
	if err := expectOne(res, err, "update todo %d", t.ID); err != nil {
		return nil, err
	}

	if replaceTags {
		if err := replaceTodoTags(ctx, tx, t.ID, tagIDs); err != nil {
			return nil, err
		}
	}

	updated, err := getTodo(ctx, tx, t.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update todo %d: %w", t.ID, err)
	}
	return updated, nil
}

// replaceTodoTags fails with domain.ErrNotFound naming the first unknown id.
func replaceTodoTags(ctx context.Context, tx *sqlx.Tx, todoID int64, tagIDs []int64) error {
	if len(tagIDs) > 0 {
		query, args, err := sqlx.In(`SELECT id FROM tags WHERE id IN (?)`, tagIDs)
		if err != nil {
			return fmt.Errorf("build tag check: %w", err)
		}
		var found []int64
		if err := tx.SelectContext(ctx, &found, query, args...); err != nil {
			return fmt.Errorf("check tags: %w", err)
		}
		for _, id := range tagIDs {
			if !slices.Contains(found, id) {
				return domain.NotFound("tag", id)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_tags WHERE todo_id = ?`, todoID); err != nil {
		return fmt.Errorf("clear tags for todo %d: %w", todoID, err)
	}
	for _, id := range tagIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?)`, todoID, id); err != nil {
			return constraintWrap(err, "link tag %d to todo %d", id, todoID)
		}
	}
	return nil
}

// DeleteTodo removes the todo's tag links, then the todo.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_tags WHERE todo_id = ?`, id); err != nil {
		return fmt.Errorf("detach tags from todo %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err := expectOne(res, err, "delete todo %d", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete todo %d: %w", id, err)
	}
	return nil
}

// DeleteDoneTodos removes every todo whose status is done.
func (s *Store) DeleteDoneTodos(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	done := string(todo.StatusDone)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM todo_tags WHERE todo_id IN (SELECT id FROM todos WHERE status = ?)`, done); err != nil {
		return 0, fmt.Errorf("detach tags from done todos: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE status = ?`, done)
	if err != nil {
		return 0, fmt.Errorf("delete done todos: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete done todos: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit archive: %w", err)
	}
	return n, nil
}

// ListTags returns all tags ordered by id.
func (s *Store) ListTags(ctx context.Context) ([]tag.Tag, error) {
	tags := []tag.Tag{}
	if err := s.db.SelectContext(ctx, &tags, `SELECT id, name FROM tags ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// CreateTag inserts a tag. A taken name yields domain.ErrConflict.
func (s *Store) CreateTag(ctx context.Context, name string) (*tag.Tag, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, name)
	if err != nil {
		return nil, constraintWrap(err, "create tag %q", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create tag %q: %w", name, err)
	}
	return &tag.Tag{ID: id, Name: name}, nil
}

// DeleteTag detaches the tag from every todo, then removes it.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_tags WHERE tag_id = ?`, id); err != nil {
		return fmt.Errorf("detach tag %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err := expectOne(res, err, "delete tag %d", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tag %d: %w", id, err)
	}
	return nil
}

// CountTags returns the number of tags.
func (s *Store) CountTags(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM tags`); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}

// ClearAll deletes every tag link, todo and tag in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, stmt := range []string{
		`DELETE FROM todo_tags`,
		`DELETE FROM todos`,
		`DELETE FROM tags`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear all: %s: %w", stmt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear all: %w", err)
	}
	return nil
}

// expectOne verifies that an Exec affected exactly one row, returning
// domain.ErrNotFound otherwise.
func expectOne(res sql.Result, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return nil
}
