package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"taskman/internal/exitcode"
	"taskman/internal/service"
)

func TestForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitcode.Success},
		{fmt.Errorf("list: %w", service.ErrUnauthorized), exitcode.AuthError},
		{fmt.Errorf("delete: %w", service.ErrNotFound), exitcode.UserError},
		{service.ErrValidation, exitcode.UserError},
		{service.ErrUnsupported, exitcode.UserError},
		{service.ErrNetwork, exitcode.BackendError},
		{errors.New("boom"), exitcode.BackendError},
	}

	for _, tt := range tests {
		if got := exitcode.ForError(tt.err); got != tt.want {
			t.Errorf("ForError(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}
