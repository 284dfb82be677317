// Package apperr defines the error taxonomy shared by all workflows.
//
// Handlers map these kinds to HTTP statuses in one place (httpjson), so
// stores and workflows can return plain errors without knowing about HTTP.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and logging.
type Kind int

const (
	// Validation is malformed or missing input, detected before any write.
	Validation Kind = iota
	// NotFound means a referenced entity is absent.
	NotFound
	// Conflict means a state precondition was violated (AlreadyProcessed,
	// AlreadyVoted, DuplicateIdentity, OptionMismatch, ...).
	Conflict
	// Expired means a poll is past its active window.
	Expired
	// TransactionFailed means a multi-document commit aborted; nothing was
	// applied and the caller may retry.
	TransactionFailed
	// Dependency is a failure of an external collaborator (email gateway).
	// It is always non-fatal to the triggering workflow.
	Dependency
	// Internal is everything else; detail must not leak to clients.
	Internal
)

// Error carries a kind, a stable machine-readable code, and a client-safe
// message. Wrapped causes stay server-side.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with the given kind, code, and message.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a new Error.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Validationf builds a Validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Code: "invalid_input", Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Code: "not_found", Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a Conflict error with a stable code and formatted message.
func Conflictf(code, format string, args ...any) *Error {
	return &Error{Kind: Conflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// CodeOf extracts the machine-readable code, or "internal_error".
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "internal_error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
