package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/todolist/internal/domain/tag"
)

// ListTags returns all tags ordered by id.
func (s *Store) ListTags(ctx context.Context) ([]tag.Tag, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[tag.Tag])
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// CreateTag inserts a tag. A taken name yields domain.ErrConflict.
func (s *Store) CreateTag(ctx context.Context, name string) (*tag.Tag, error) {
	t := tag.Tag{Name: name}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tags (name) VALUES ($1) RETURNING id`, name,
	).Scan(&t.ID)
	if err != nil {
		return nil, constraintWrap(err, "create tag %q", name)
	}
	return &t, nil
}

// DeleteTag detaches the tag from every todo, then removes it.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM todo_tags WHERE tag_id = $1`, id); err != nil {
		return fmt.Errorf("detach tag %d: %w", id, err)
	}
	ct, err := tx.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err := execExpectOne(ct, err, "delete tag %d", id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete tag %d: %w", id, err)
	}
	return nil
}

// CountTags returns the number of tags.
func (s *Store) CountTags(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}
