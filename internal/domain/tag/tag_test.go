package tag

import (
	"errors"
	"strings"
	"testing"

	"github.com/Strob0t/todolist/internal/domain"
)

func TestCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr bool
		errMsg  string
	}{
		{name: "valid", req: CreateRequest{Name: "work"}},
		{name: "unicode name", req: CreateRequest{Name: "工作"}},
		{name: "empty", req: CreateRequest{}, wantErr: true, errMsg: "name is required"},
		{name: "at max length", req: CreateRequest{Name: strings.Repeat("a", MaxNameLength)}},
		{name: "too long", req: CreateRequest{Name: strings.Repeat("a", MaxNameLength+1)}, wantErr: true, errMsg: "exceeds"},
		{name: "control char", req: CreateRequest{Name: "wo\nrk"}, wantErr: true, errMsg: "control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got: %v", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error to contain %q, got: %v", tt.errMsg, err)
			}
		})
	}
}
