package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("update todo 3: %w", NotFound("tag", 42))

	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected NotFoundError to match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("NotFoundError must not match ErrConflict")
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("expected errors.As to find *NotFoundError")
	}
	if nf.Error() != "tag 42 not found" {
		t.Errorf("unexpected message %q", nf.Error())
	}
}
