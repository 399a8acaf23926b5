package service

import (
	"context"
	"fmt"
	"log/slog"

	cfotel "github.com/Strob0t/todolist/internal/adapter/otel"
	"github.com/Strob0t/todolist/internal/port/database"
	"github.com/Strob0t/todolist/internal/port/messagequeue"
)

// DefaultTags are created by SeedTags on an empty tag table.
var DefaultTags = []string{"工作", "個人", "緊急"}

// AdminService handles whole-dataset operations.
type AdminService struct {
	store    database.Store
	notifier *Notifier
	metrics  *cfotel.Metrics
}

// NewAdminService creates a new AdminService.
func NewAdminService(store database.Store, notifier *Notifier, metrics *cfotel.Metrics) *AdminService {
	return &AdminService{store: store, notifier: notifier, metrics: metrics}
}

// ClearAll deletes every todo, tag and tag link. On failure nothing is
// deleted.
func (s *AdminService) ClearAll(ctx context.Context) (err error) {
	ctx, span := cfotel.StartSpan(ctx, "admin.clear_all")
	defer func() { cfotel.End(span, err) }()

	todos, err := s.store.ListTodos(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}

	n := int64(len(todos))
	slog.Info("all data cleared", "todos", n)
	s.metrics.RecordMutation(ctx, "all", "clear")
	s.metrics.RecordRemoved(ctx, "clear_all", n)
	s.notifier.bulk(ctx, messagequeue.SubjectDataCleared, n)
	return nil
}

// SeedTags creates DefaultTags when no tag exists yet and returns how many
// were created.
func (s *AdminService) SeedTags(ctx context.Context) (int, error) {
	n, err := s.store.CountTags(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for i, name := range DefaultTags {
		if _, err := s.store.CreateTag(ctx, name); err != nil {
			return i, fmt.Errorf("seed tag %q: %w", name, err)
		}
	}
	slog.Info("default tags seeded", "count", len(DefaultTags))
	return len(DefaultTags), nil
}
