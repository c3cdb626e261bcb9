package apperr

import (
	"errors"
	"fmt"
)

// 错误类别 (sentinel kinds)
var (
	// ErrNotFound is returned by singular lookups that found nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument covers blank, null, out-of-range or self-referencing input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNullArgument is a required endpoint that was nil. It is also an ErrInvalidArgument.
	ErrNullArgument = fmt.Errorf("%w: null argument", ErrInvalidArgument)
	// ErrConstraintViolation is a uniqueness or required-relation breach at the storage boundary.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrPersistence wraps storage failures that are not business validation.
	ErrPersistence = errors.New("persistence failure")
	// ErrOperationFailed is what services hand back for persistence failures.
	ErrOperationFailed = errors.New("operation failed")
)

// Error attaches the failing operation to a kind and keeps the cause for diagnostics.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil && e.Err != e.Kind {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind as well as anything in the cause chain.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

func New(op string, kind error, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Invalid builds an ErrInvalidArgument with a message.
func Invalid(op, format string, args ...any) error {
	return New(op, ErrInvalidArgument, fmt.Errorf(format, args...))
}

// Null builds an ErrNullArgument naming the missing parameter.
func Null(op, name string) error {
	return New(op, ErrNullArgument, fmt.Errorf("%s must not be nil", name))
}

// IsBusiness reports whether err is a validation, lookup or constraint error,
// i.e. one that callers are expected to act on rather than retry.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConstraintViolation)
}
