package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/todolist/internal/domain"
	"github.com/Strob0t/todolist/internal/domain/tag"
	"github.com/Strob0t/todolist/internal/domain/todo"
)

const todoColumns = `id, title, completed, status, priority, due_date, created_at`

func scanTodo(row pgx.Row) (todo.Todo, error) {
	var (
		t   todo.Todo
		due *time.Time
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &t.Status, &t.Priority, &due, &t.CreatedAt); err != nil {
		return todo.Todo{}, err
	}
	if due != nil {
		d := todo.DateOf(*due)
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.Tags = []tag.Tag{}
	return t, nil
}

func dueDateArg(d *todo.Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}

// ListTodos returns all todos ordered by id, each with its tags.
func (s *Store) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []todo.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	if err := attachTags(ctx, s.pool, todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// GetTodo returns one todo with its tags.
func (s *Store) GetTodo(ctx context.Context, id int64) (*todo.Todo, error) {
	return getTodo(ctx, s.pool, id)
}

func getTodo(ctx context.Context, q querier, id int64) (*todo.Todo, error) {
	t, err := scanTodo(q.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundWrap(err, "get todo %d", id)
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

	rows, err := q.Query(ctx,
		`SELECT tt.todo_id, tg.id, tg.name
		 FROM todo_tags tt JOIN tags tg ON tg.id = tt.tag_id
		 WHERE tt.todo_id = ANY($1)
		 ORDER BY tt.todo_id, tg.id`, ids)
	if err != nil {
		return fmt.Errorf("load todo tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			todoID int64
			tg     tag.Tag
		)
		if err := rows.Scan(&todoID, &tg.ID, &tg.Name); err != nil {
			return fmt.Errorf("scan todo tag: %w", err)
		}
		if i, ok := index[todoID]; ok {
			todos[i].Tags = append(todos[i].Tags, tg)
		}
	}
	return rows.Err()
}

// CreateTodo inserts t and links the existing tags among tagIDs.
func (s *Store) CreateTodo(ctx context.Context, t *todo.Todo, tagIDs []int64) (*todo.Todo, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO todos (title, completed, status, priority, due_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		t.Title, t.Completed, string(t.Status), string(t.Priority), dueDateArg(t.DueDate), t.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	if len(tagIDs) > 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO todo_tags (todo_id, tag_id)
			 SELECT $1, id FROM tags WHERE id = ANY($2)
			 ON CONFLICT DO NOTHING`, id, tagIDs)
		if err != nil {
			return nil, fmt.Errorf("link tags for todo %d: %w", id, err)
		}
	}

	created, err := getTodo(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create todo: %w", err)
	}
	return created, nil
}

// UpdateTodo writes every column of t and, when replaceTags is set, swaps
// its tag set for tagIDs. All of it commits or none of it does.
func (s *Store) UpdateTodo(ctx context.Context, t *todo.Todo, replaceTags bool, tagIDs []int64) (*todo.Todo, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	ct, err := tx.Exec(ctx,
		`UPDATE todos
		 SET title = $2, completed = $3, status = $4, priority = $5, due_date = $6
		 WHERE id = $1`,
		t.ID, t.Title, t.Completed, string(t.Status), string(t.Priority), dueDateArg(t.DueDate))
	if err := execExpectOne(ct, err, "update todo %d", t.ID); err != nil {
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
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update todo %d: %w", t.ID, err)
	}
	return updated, nil
}

// replaceTodoTags fails with domain.ErrNotFound naming the first unknown id.
// The referenced tags are locked so a concurrent delete cannot slip in.
func replaceTodoTags(ctx context.Context, tx pgx.Tx, todoID int64, tagIDs []int64) error {
	if len(tagIDs) > 0 {
		rows, err := tx.Query(ctx, `SELECT id FROM tags WHERE id = ANY($1) FOR KEY SHARE`, tagIDs)
		if err != nil {
			return fmt.Errorf("check tags: %w", err)
		}
		found, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return fmt.Errorf("check tags: %w", err)
		}
		for _, id := range tagIDs {
			if !slices.Contains(found, id) {
				return domain.NotFound("tag", id)
			}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM todo_tags WHERE todo_id = $1`, todoID); err != nil {
		return fmt.Errorf("clear tags for todo %d: %w", todoID, err)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO todo_tags (todo_id, tag_id) SELECT $1, unnest($2::bigint[])`,
		todoID, tagIDs)
	if err != nil {
		return constraintWrap(err, "link tags for todo %d", todoID)
	}
	return nil
}

// DeleteTodo removes the todo's tag links, then the todo.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM todo_tags WHERE todo_id = $1`, id); err != nil {
		return fmt.Errorf("detach tags from todo %d: %w", id, err)
	}
	ct, err := tx.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err := execExpectOne(ct, err, "delete todo %d", id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete todo %d: %w", id, err)
	}
	return nil
}

// DeleteDoneTodos removes every todo whose status is done.
func (s *Store) DeleteDoneTodos(ctx context.Context) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`DELETE FROM todo_tags WHERE todo_id IN (SELECT id FROM todos WHERE status = $1)`,
		string(todo.StatusDone))
	if err != nil {
		return 0, fmt.Errorf("detach tags from done todos: %w", err)
	}
	ct, err := tx.Exec(ctx, `DELETE FROM todos WHERE status = $1`, string(todo.StatusDone))
	if err != nil {
		return 0, fmt.Errorf("delete done todos: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit archive: %w", err)
	}
	return ct.RowsAffected(), nil
}
