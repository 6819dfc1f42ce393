package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error so transports and tests can branch on intent
// without string-matching messages.
type Code string

const (
	// CodeValidation covers bad input: missing fields, enum misses, failed
	// configured validation rules.
	CodeValidation Code = "validation"
	// CodeFailedPrecondition covers operations attempted before the workspace
	// is in a usable state (no organization, no organizational units).
	CodeFailedPrecondition Code = "failed_precondition"
	// CodeNotFound covers references to entities that do not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict covers state conflicts: duplicates, frozen configuration,
	// edits to approved records.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation covers structural misuse (unit cycles, deleting a
	// parent unit). Distinct from validation: this signals a caller bug, not
	// bad user input.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal covers unexpected failures.
	CodeInternal Code = "internal"
)

// Error is the one error type domain operations return. Missing is populated
// only by structured validation errors (see NewMissingFields) so callers can
// render every deficiency at once.
type Error struct {
	Code    Code
	Message string
	Missing []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// NewMissingFields builds a structured validation error enumerating every
// field that blocks the requested transition.
func NewMissingFields(message string, missing []string) *Error {
	return &Error{Code: CodeValidation, Message: message, Missing: missing}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// MissingFields returns the enumerated missing-field list when err is a
// structured validation error, or nil.
func MissingFields(err error) []string {
	var de *Error
	if errors.As(err, &de) {
		return de.Missing
	}
	return nil
}
