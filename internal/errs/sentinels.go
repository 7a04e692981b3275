// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing or invalid caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks the role for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation")

	// ErrIO indicates the document store could not be read or written.
	ErrIO = errors.New("store io")
)

// Login throttle outcomes.
var (
	ErrUserNotFound            = errors.New("user not found")
	ErrWrongPassword           = errors.New("wrong password")
	ErrAccountLocked           = errors.New("account locked")
	ErrVerificationRequired    = errors.New("email verification required")
	ErrVerificationNotRequired = errors.New("email verification not required")
	ErrInvalidCode             = errors.New("invalid verification code")
)

// Ledger outcomes.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSelfDelete        = errors.New("cannot delete own account")
)

// LockedError reports a temporary lock and how long it still holds.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %ds", e.RemainingSeconds())
}

// Is makes errors.Is(err, ErrAccountLocked) match.
func (e *LockedError) Is(target error) bool { return target == ErrAccountLocked }

// RemainingSeconds rounds the remaining lock time up to whole seconds.
func (e *LockedError) RemainingSeconds() int64 {
	if e.Remaining <= 0 {
		return 0
	}
	return int64((e.Remaining + time.Second - 1) / time.Second)
}

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
