package errs

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestLockedError_IsAndRemaining(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("login: %w", &LockedError{Remaining: 90*time.Second + time.Millisecond})
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("LockedError must match ErrAccountLocked")
	}
	var le *LockedError
	if !errors.As(err, &le) {
		t.Fatalf("errors.As failed")
	}
	if le.RemainingSeconds() != 91 {
		t.Fatalf("remaining=%d, want 91", le.RemainingSeconds())
	}
	if (&LockedError{Remaining: -time.Second}).RemainingSeconds() != 0 {
		t.Fatalf("negative remaining must clamp to 0")
	}
}

func TestValidationf(t *testing.T) {
	t.Parallel()

	err := Validationf("bad %s", "name")
	if !errors.Is(err, ErrValidation) || err.Error() != "validation: bad name" {
		t.Fatalf("unexpected: %v", err)
	}
}
