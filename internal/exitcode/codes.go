// Package exitcode defines structured exit codes for the raygun binary, so
// callers (scripts wrapping raygun, shells checking $?) can distinguish
// bootstrap failure modes without parsing stderr text.
package exitcode

import (
	"errors"
	"fmt"
)

// Exit codes for the raygun command.
const (
	// Success indicates clean shutdown (quit via keybinding or signal).
	Success = 0

	// ErrGeneral is an unclassified failure.
	ErrGeneral = 1
	// ErrUsage indicates invalid CLI arguments.
	ErrUsage = 2
	// ErrBind indicates the HTTP listener could not bind (address in use
	// or otherwise unavailable) — the one bootstrap failure spec.md calls
	// out as operator-actionable.
	ErrBind = 3
	// ErrInternal indicates an internal error (bug).
	ErrInternal = 4
)

// Error wraps an error with a specific exit code.
type Error struct {
	Code    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new coded error.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code int, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Code extracts the exit code from an error, returning ErrGeneral if err
// doesn't carry one.
func Code(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ErrGeneral
}

// Is checks whether err carries the given exit code.
func Is(err error, code int) bool {
	return Code(err) == code
}

// BindFailed wraps a listener bind error with a suggestion to retry with a
// different --bind address, per spec.md §6/§7.
func BindFailed(addr string, cause error) *Error {
	return Wrap(ErrBind, fmt.Sprintf("cannot bind %s (try a different --bind address)", addr), cause)
}
