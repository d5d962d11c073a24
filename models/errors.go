package models

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindNotAuthorized       ErrorKind = "not_authorized"
	KindDuplicateAssignment ErrorKind = "duplicate_assignment"
	KindCapacityExceeded    ErrorKind = "capacity_exceeded"
	KindInvitationNotFound  ErrorKind = "invitation_not_found"
	KindUniquenessConflict  ErrorKind = "uniqueness_conflict"
	KindValidation          ErrorKind = "validation_error"
	KindConflict            ErrorKind = "conflict"
	KindInternal            ErrorKind = "internal_error"
)

// WorkflowError is the structured failure returned by services.
// errors.Is matches any two WorkflowErrors of the same kind, so callers
// compare against the sentinels below.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

func (e *WorkflowError) Is(target error) bool {
	t, ok := target.(*WorkflowError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound            = &WorkflowError{Kind: KindNotFound, Message: "not found"}
	ErrNotAuthorized       = &WorkflowError{Kind: KindNotAuthorized, Message: "not authorized"}
	ErrDuplicateAssignment = &WorkflowError{Kind: KindDuplicateAssignment, Message: "reviewer already assigned"}
	ErrCapacityExceeded    = &WorkflowError{Kind: KindCapacityExceeded, Message: fmt.Sprintf("maximum %d reviewers allowed", MaxReviewers)}
	ErrInvitationNotFound  = &WorkflowError{Kind: KindInvitationNotFound, Message: "invitation not found for your account"}
	ErrUniquenessConflict  = &WorkflowError{Kind: KindUniquenessConflict, Message: "record already exists"}
	ErrValidation          = &WorkflowError{Kind: KindValidation, Message: "invalid input"}
	ErrConflict            = &WorkflowError{Kind: KindConflict, Message: "record was modified concurrently, retry"}
)

func NewError(kind ErrorKind, format string, args ...interface{}) error {
	return &WorkflowError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(format string, args ...interface{}) error {
	return NewError(KindNotFound, format, args...)
}

func NotAuthorizedError(format string, args ...interface{}) error {
	return NewError(KindNotAuthorized, format, args...)
}

func ValidationError(format string, args ...interface{}) error {
	return NewError(KindValidation, format, args...)
}

// KindOf reports the workflow kind carried by err, or KindInternal for
// anything that is not a WorkflowError.
func KindOf(err error) ErrorKind {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindInternal
}
