package todo

import (
	"fmt"
	"time"
	"unicode"

	"github.com/Strob0t/todolist/internal/domain"
)

// New builds a Todo from a create request, filling defaults and syncing
// Completed with Status. The returned tag IDs are deduplicated in request
// order; resolving them is left to the store.
func New(req *CreateRequest, now time.Time) (*Todo, []int64, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusTodo
	}
	if !status.Valid() {
		return nil, nil, invalidStatus(status)
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, nil, invalidPriority(priority)
	}

	t := &Todo{
		Title:     req.Title,
		Status:    status,
		Completed: status == StatusDone,
		Priority:  priority,
		CreatedAt: now.UTC(),
	}

	if req.DueDate != "" {
		d, err := ParseDate(req.DueDate)
		if err != nil {
			return nil, nil, fmt.Errorf("due_date: %s: %w", err.Error(), domain.ErrValidation)
		}
		t.DueDate = &d
	}

	return t, UniqueIDs(req.TagIDs), nil
}

// Validate checks every present field of the update without applying it.
func (r *UpdateRequest) Validate() error {
	if r.Title.Set {
		if r.Title.Null {
			return fmt.Errorf("title must not be null: %w", domain.ErrValidation)
		}
		if err := validateTitle(r.Title.Value); err != nil {
			return err
		}
	}
	if r.Completed.Set && r.Completed.Null {
		return fmt.Errorf("completed must be a boolean: %w", domain.ErrValidation)
	}
	if r.Status.Set && (r.Status.Null || !r.Status.Value.Valid()) {
		return invalidStatus(r.Status.Value)
	}
	if r.Priority.Set && (r.Priority.Null || !r.Priority.Value.Valid()) {
		return invalidPriority(r.Priority.Value)
	}
	if r.DueDate.Set && !r.DueDate.Null && r.DueDate.Value != "" {
		if _, err := ParseDate(r.DueDate.Value); err != nil {
			return fmt.Errorf("due_date: %s: %w", err.Error(), domain.ErrValidation)
		}
	}
	return nil
}

// Apply validates req and merges its present fields into t, in the order
// title, completed, status, priority, due_date. Setting completed=false only
// reopens a done todo; a doing todo stays doing. An explicit status always
// wins over completed because it is applied last.
//
// replaceTags reports whether tag_ids was present; tagIDs is then the full
// replacement set (possibly empty).
func Apply(t *Todo, req *UpdateRequest) (tagIDs []int64, replaceTags bool, err error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	if req.Title.Set {
		t.Title = req.Title.Value
	}

	if req.Completed.Set {
		t.Completed = req.Completed.Value
		if t.Completed {
			t.Status = StatusDone
		} else if t.Status == StatusDone {
			t.Status = StatusTodo
		}
	}

	if req.Status.Set {
		t.Status = req.Status.Value
		t.Completed = t.Status == StatusDone
	}

	if req.Priority.Set {
		t.Priority = req.Priority.Value
	}

	if req.DueDate.Set {
		if req.DueDate.Null || req.DueDate.Value == "" {
			t.DueDate = nil
		} else {
			d, _ := ParseDate(req.DueDate.Value) // checked by Validate
			t.DueDate = &d
		}
	}

	if req.TagIDs.Set {
		return UniqueIDs(req.TagIDs.Value), true, nil
	}
	return nil, false, nil
}

// UniqueIDs returns ids without duplicates, keeping first occurrences.
// The result is never nil.
func UniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if len([]rune(title)) > MaxTitleLength {
		return fmt.Errorf("title exceeds %d characters: %w", MaxTitleLength, domain.ErrValidation)
	}
	for _, r := range title {
		if r != '\t' && unicode.IsControl(r) {
			return fmt.Errorf("title contains control characters: %w", domain.ErrValidation)
		}
	}
	return nil
}

func invalidStatus(s Status) error {
	return fmt.Errorf("status must be one of todo, doing, done (got %q): %w", s, domain.ErrValidation)
}

func invalidPriority(p Priority) error {
	return fmt.Errorf("priority must be one of low, medium, high (got %q): %w", p, domain.ErrValidation)
}
