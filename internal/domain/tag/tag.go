// Package tag defines the Tag domain entity.
package tag

import (
	"fmt"
	"unicode"

	"github.com/Strob0t/todolist/internal/domain"
)

// MaxNameLength bounds tag names to the column width.
const MaxNameLength = 50

// Tag is a label that can be attached to any number of todos.
type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CreateRequest holds the fields needed to create a tag.
type CreateRequest struct {
	Name string `json:"name"`
}

// Validate checks that the request carries a usable name.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if len([]rune(r.Name)) > MaxNameLength {
		return fmt.Errorf("name exceeds %d characters: %w", MaxNameLength, domain.ErrValidation)
	}
	for _, c := range r.Name {
		if unicode.IsControl(c) {
			return fmt.Errorf("name contains control characters: %w", domain.ErrValidation)
		}
	}
	return nil
}
