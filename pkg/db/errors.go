package db

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Concrete errors below unwrap to one of these so callers can
// branch with errors.Is without caring which precondition tripped. The
// postgres gateway maps constraint violations (unique, serialization) onto
// the same kinds, so a caller cannot tell a lost race from a conflict seen
// up front.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrExpired    = errors.New("expired")
)

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is a conflict (duplicate, capacity race,
// double booking).
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsExpired reports whether err is an expiry failure.
func IsExpired(err error) bool { return errors.Is(err, ErrExpired) }

// NotFoundError reports an absent entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateSignupError reports an existing active signup for the same
// (user, shift) pair.
type DuplicateSignupError struct {
	UserID  string
	ShiftID string
}

func (e *DuplicateSignupError) Error() string {
	return fmt.Sprintf("user %s already has an active signup for shift %s", e.UserID, e.ShiftID)
}

func (e *DuplicateSignupError) Unwrap() error { return ErrConflict }

// DoubleBookingError names the confirmed signup that blocks another signup on
// the same civil day.
type DoubleBookingError struct {
	Date                string
	ConflictingShiftID  string
	ConflictingLocation string
	ConflictingStart    time.Time
}

func (e *DoubleBookingError) Error() string {
	return fmt.Sprintf("user already has a confirmed shift on %s at %s (shift %s)",
		e.Date, e.ConflictingLocation, e.ConflictingShiftID)
}

func (e *DoubleBookingError) Unwrap() error { return ErrConflict }

// CapacityError reports a shift with no confirmed capacity left.
type CapacityError struct {
	ShiftID  string
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("shift %s is full (capacity %d)", e.ShiftID, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrConflict }

// ValidationError names the field or question that failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ExpiredError reports a token or assignment whose time boundary has passed.
type ExpiredError struct {
	Entity    string
	ExpiredAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("%s expired at %s", e.Entity, e.ExpiredAt.UTC().Format(time.RFC3339))
}

func (e *ExpiredError) Unwrap() error { return ErrExpired }
