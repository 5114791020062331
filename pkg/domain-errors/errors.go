// Package domainerrors defines the closed error-code taxonomy shared by all
// layers. Services return coded errors; transport translates codes to HTTP
// statuses without leaking internal detail.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers: whether to fix input, retry, or give up.
type Code string

const (
	// CodeUnauthorized: the caller lacks the required authority.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden: the caller is authenticated but not allowed.
	CodeForbidden Code = "forbidden"
	// CodeInvalidInput: the caller must correct the input and retry.
	CodeInvalidInput Code = "invalid_input"
	// CodeConflict: the operation conflicts with existing state and is not
	// retryable (single issuance, non-transferability).
	CodeConflict Code = "conflict"
	// CodeNotFound: the referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeUnavailable: an environmental failure; retryable with backoff.
	CodeUnavailable Code = "unavailable"
	// CodeTimeout: the caller-supplied deadline was exceeded.
	CodeTimeout Code = "timeout"
	// CodeInternal: an unexpected failure; details stay server-side.
	CodeInternal Code = "internal_error"
)

// Error carries a code plus a human-readable message. The message is safe to
// surface for caller-correctable codes; transport hides it for internals.
type Error struct {
	Code    Code
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

// New builds a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a coded error preserving an underlying cause for errors.Is/As.
func Wrap(code Code, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so unexpected failures never masquerade as caller mistakes.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the message from a coded error, empty otherwise.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
