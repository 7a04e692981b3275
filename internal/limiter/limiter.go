// Package limiter implements the per-username login throttle.
//
// A username moves through four states as failures accumulate:
//
//	CLEAN               no record
//	WARNED              1..LockAfter-1 failures, or a lock that has run out
//	LOCKED              LockAfter..VerifyAfter-1 failures with LockedUntil in the future
//	NEEDS_VERIFICATION  VerifyAfter or more failures; only email verification clears it
//
// Lock expiry alone never resets the counter. Policy methods are pure: callers load the
// record, apply the transition and persist the result in one repository cycle.
package limiter

import (
	"time"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
)

// State is the throttle state of one username.
type State int

const (
	StateClean State = iota
	StateWarned
	StateLocked
	StateNeedsVerification
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "CLEAN"
	case StateWarned:
		return "WARNED"
	case StateLocked:
		return "LOCKED"
	case StateNeedsVerification:
		return "NEEDS_VERIFICATION"
	default:
		return "UNKNOWN"
	}
}

// Policy holds the escalation thresholds.
type Policy struct {
	LockAfter   int           // failures that start a temporary lock
	VerifyAfter int           // failures that require email verification
	LockFor     time.Duration // length of each temporary lock
}

// DefaultPolicy locks for 5 minutes from the 3rd failure and demands verification from the 10th.
func DefaultPolicy() Policy {
	return Policy{LockAfter: 3, VerifyAfter: 10, LockFor: 5 * time.Minute}
}

// Normalize replaces unset fields with defaults.
func (p Policy) Normalize() Policy {
	d := DefaultPolicy()
	if p.LockAfter <= 0 {
		p.LockAfter = d.LockAfter
	}
	if p.VerifyAfter <= 0 {
		p.VerifyAfter = d.VerifyAfter
	}
	if p.LockFor <= 0 {
		p.LockFor = d.LockFor
	}
	return p
}

func (p Policy) needsVerification(a *model.LoginAttempt) bool {
	return a.RequiresEmailVerification || a.Count >= p.VerifyAfter
}

func lockedAt(a *model.LoginAttempt, now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// StateOf classifies a record; nil means no record.
func (p Policy) StateOf(a *model.LoginAttempt, now time.Time) State {
	switch {
	case a == nil || a.Count == 0:
		return StateClean
	case p.needsVerification(a):
		return StateNeedsVerification
	case lockedAt(a, now):
		return StateLocked
	default:
		return StateWarned
	}
}

// Check rejects a login attempt before the password is looked at.
// An active lock wins over the verification requirement; neither touches the counter.
func (p Policy) Check(a *model.LoginAttempt, now time.Time) error {
	if a == nil {
		return nil
	}
	if lockedAt(a, now) {
		return &errs.LockedError{Remaining: a.LockedUntil.Sub(now)}
	}
	if p.needsVerification(a) {
		return errs.ErrVerificationRequired
	}
	return nil
}

// Fail records one more failure for username and returns the new record.
func (p Policy) Fail(prev *model.LoginAttempt, username string, now time.Time) model.LoginAttempt {
	var next model.LoginAttempt
	if prev != nil {
		next = *prev
	}
	next.Username = username
	next.Count++
	next.LastAttempt = now
	next.LockedUntil = nil

	switch {
	case next.Count >= p.VerifyAfter:
		next.RequiresEmailVerification = true
	case next.Count >= p.LockAfter:
		until := now.Add(p.LockFor)
		next.LockedUntil = &until
	}
	return next
}

// FailureError maps a just-recorded wrong-password failure to its message tier.
func (p Policy) FailureError(a model.LoginAttempt, now time.Time) error {
	switch {
	case p.needsVerification(&a):
		return errs.ErrVerificationRequired
	case lockedAt(&a, now):
		return &errs.LockedError{Remaining: a.LockedUntil.Sub(now)}
	default:
		return errs.ErrWrongPassword
	}
}
