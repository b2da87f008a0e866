// Package apperr defines the error taxonomy shared by the workflow core,
// its storage adapters and the action surfaces.
//
// Every error leaving a service is tagged with exactly one kind so callers
// can branch with errors.Is and boundaries can render a stable code.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidState       = errors.New("invalid state")
	ErrInfrastructure     = errors.New("infrastructure error")
)

var kinds = []error{
	ErrNotFound,
	ErrForbidden,
	ErrUnauthorized,
	ErrValidation,
	ErrConflict,
	ErrPreconditionFailed,
	ErrInvalidState,
	ErrInfrastructure,
}

// Error carries a taxonomy kind, the operation that failed, a user-facing
// message and the underlying cause (kept for logging).
type Error struct {
	Kind      error
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if op := strings.TrimSpace(e.Operation); op != "" {
		parts = append(parts, op)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	} else if e.Kind != nil && e.Cause == nil {
		parts = append(parts, e.Kind.Error())
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// Unwrap exposes the cause so errors.As reaches driver errors.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorKind returns the stable code for the kind.
func (e *Error) ErrorKind() string {
	return Code(e.Kind)
}

// Wrap tags cause with kind. When cause already carries a taxonomy kind and
// kind is nil, the existing kind is preserved.
func Wrap(kind error, operation, message string, cause error) error {
	if kind == nil {
		kind = KindOf(cause)
	}
	return &Error{Kind: kind, Operation: operation, Message: message, Cause: cause}
}

// New builds an error of the given kind without a cause.
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound is shorthand for a missing entity.
func NotFound(entity, id string) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// KindOf returns the taxonomy kind of err. Unclassified errors are
// infrastructure errors; nil yields nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInfrastructure
}

// Is reports whether err is of the given kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}

// Code returns a stable machine-readable code for a kind.
func Code(kind error) string {
	switch kind {
	case nil:
		return ""
	case ErrNotFound:
		return "not_found"
	case ErrForbidden:
		return "forbidden"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrValidation:
		return "validation"
	case ErrConflict:
		return "conflict"
	case ErrPreconditionFailed:
		return "precondition_failed"
	case ErrInvalidState:
		return "invalid_state"
	default:
		return "infrastructure"
	}
}

// Message returns the user-facing message of err: the tagged message when
// present, the error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if tagged, ok := e.(*Error); ok && strings.TrimSpace(tagged.Message) != "" {
			return tagged.Message
		}
	}
	return err.Error()
}
