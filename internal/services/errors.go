// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/javajoker/sneakers-backend/internal/repository"
)

// ErrorKind classifies a failed operation for the transport layer.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthorization
	KindNotFound
	KindInvalidTransition
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is returned for every expected failure. A failed operation leaves
// orders, trades and items unchanged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func AuthorizationError(format string, args ...interface{}) *Error {
	return newError(KindAuthorization, format, args...)
}

func NotFoundError(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func InvalidTransitionError(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func ConflictError(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// KindOf returns the kind of a service error, or zero for anything else.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return 0
}

// lookupError turns a repository miss into a NotFound error naming the
// resource and passes other failures through wrapped.
func lookupError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFoundError("%s not found", resource)
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}
