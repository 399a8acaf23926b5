package postgres

import (
	"context"
	"fmt"
)

// ClearAll deletes every tag link, todo and tag in one transaction.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, stmt := range []string{
		`DELETE FROM todo_tags`,
		`DELETE FROM todos`,
		`DELETE FROM tags`,
	} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("clear all: %s: %w", stmt, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit clear all: %w", err)
	}
	return nil
}
