//go:build integration

package integration_test

import (
	"context"
	"testing"

	"github.com/Strob0t/todolist/internal/adapter/postgres"
)

// TestMigrationUpDown rolls every migration back, then re-applies them.
// This verifies that every migration's Down section works correctly.
func TestMigrationUpDown(t *testing.T) {
	ctx := context.Background()

	p, closeDB, err := postgres.Migrator(testPool)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	defer func() { _ = closeDB() }()

	latest, err := p.GetDBVersion(ctx)
	if err != nil {
		t.Fatalf("version after up: %v", err)
	}
	if latest == 0 {
		t.Fatal("expected migrations to be applied by TestMain")
	}

	if _, err := p.DownTo(ctx, 0); err != nil {
		t.Fatalf("down to 0: %v", err)
	}
	if v, _ := p.GetDBVersion(ctx); v != 0 {
		t.Fatalf("expected version 0 after full rollback, got %d", v)
	}

	if _, err := p.Up(ctx); err != nil {
		t.Fatalf("re-apply: %v", err)
	}
	if v, _ := p.GetDBVersion(ctx); v != latest {
		t.Fatalf("expected version %d after re-apply, got %d", latest, v)
	}
}
