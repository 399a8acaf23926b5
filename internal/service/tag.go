package service

import (
	"context"

	cfotel "github.com/Strob0t/todolist/internal/adapter/otel"
	"github.com/Strob0t/todolist/internal/domain/tag"
	"github.com/Strob0t/todolist/internal/port/database"
	"github.com/Strob0t/todolist/internal/port/messagequeue"
)

// TagService handles tag business logic.
type TagService struct {
	store    database.Store
	notifier *Notifier
	metrics  *cfotel.Metrics
}

// NewTagService creates a new TagService.
func NewTagService(store database.Store, notifier *Notifier, metrics *cfotel.Metrics) *TagService {
	return &TagService{store: store, notifier: notifier, metrics: metrics}
}

// List returns all tags.
func (s *TagService) List(ctx context.Context) ([]tag.Tag, error) {
	return s.store.ListTags(ctx)
}

// Create validates req and stores a new tag. A taken name yields
// domain.ErrConflict.
func (s *TagService) Create(ctx context.Context, req *tag.CreateRequest) (_ *tag.Tag, err error) {
	ctx, span := cfotel.StartSpan(ctx, "tag.create")
	defer func() { cfotel.End(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.store.CreateTag(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordMutation(ctx, "tag", "create")
	s.notifier.tagChanged(ctx, messagequeue.SubjectTagCreated, t.ID, t)
	return t, nil
}

// Delete detaches the tag from every todo and removes it.
func (s *TagService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := cfotel.StartSpan(ctx, "tag.delete", cfotel.TagID(id))
	defer func() { cfotel.End(span, err) }()

	if err := s.store.DeleteTag(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordMutation(ctx, "tag", "delete")
	s.notifier.tagChanged(ctx, messagequeue.SubjectTagDeleted, id, nil)
	return nil
}
