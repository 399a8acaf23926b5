// Package domain provides shared domain-level sentinel errors.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a uniqueness conflict, e.g. a duplicate tag name.
var ErrConflict = errors.New("conflict")

// ErrValidation indicates a malformed or missing request field.
var ErrValidation = errors.New("validation failed")

// NotFoundError names a missing entity. It matches ErrNotFound with
// errors.Is.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound returns a *NotFoundError for the given entity and id.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}
