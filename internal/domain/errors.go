package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Every error returned by the services wraps one of these.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

// Error is a user-facing failure with a message naming its root cause.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) error {
	return &Error{Kind: ErrBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// SchedulingConflictError reports that a worker already holds a shift on a day.
type SchedulingConflictError struct {
	WorkerID        uuid.UUID
	WorkerName      string
	Date            Date
	ConflictShiftID uuid.UUID
}

func (e *SchedulingConflictError) Error() string {
	name := e.WorkerName
	if name == "" {
		name = e.WorkerID.String()
	}
	return fmt.Sprintf("worker %s already has a shift on %s", name, e.Date)
}

func (e *SchedulingConflictError) Unwrap() error {
	return ErrBadRequest
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
