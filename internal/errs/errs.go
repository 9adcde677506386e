// Package errs defines the error taxonomy shared by the bisect engine, the
// resolver, and the command layer. Codes let callers distinguish advisory
// conditions (warn and continue) from fatal ones without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a specific error condition.
type Code string

const (
	// Revision resolution
	CodeUnresolvableRevision Code = "UNRESOLVABLE_REVISION"

	// Session lifecycle
	CodeNoActiveSession     Code = "NO_ACTIVE_SESSION"
	CodeSessionExists       Code = "SESSION_EXISTS"
	CodeSessionPathMismatch Code = "SESSION_PATH_MISMATCH"

	// Engine transitions
	CodeInvalidBoundOrdering Code = "INVALID_BOUND_ORDERING"

	// Command dispatch
	CodeAmbiguousCommand Code = "AMBIGUOUS_COMMAND"
	CodeUnknownCommand   Code = "UNKNOWN_COMMAND"
	CodeInvalidTerm      Code = "INVALID_TERM"

	// Backend
	CodeSVNFailed    Code = "SVN_FAILED"
	CodeUpdateFailed Code = "UPDATE_FAILED"

	// Automation
	CodeAutomationAbort Code = "AUTOMATION_ABORT"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
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

// New creates a coded error.
func New(code Code, format string, a ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code Code, format string, a ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, a...), Cause: err}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the code from err, unwrapping as needed. Returns "" for
// nil or uncoded errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Advisory reports whether err is an advisory condition: reported to the
// user but not a command failure.
func Advisory(err error) bool {
	return Is(err, CodeInvalidBoundOrdering)
}
