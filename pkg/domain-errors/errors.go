// Package dErrors provides coded domain errors. Services return these so
// transports and callers can branch on the code without string matching,
// while the wrapped chain keeps enough context (offending hash, ID, field)
// to act on.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for programmatic handling.
type Code string

const (
	// CodeValidation marks a business-rule rejection of otherwise well-formed
	// input (e.g. stake below the policy minimum).
	CodeValidation Code = "validation"
	// CodeInvalidInput marks malformed input rejected at a trust boundary
	// (bad UUID, malformed certificate hash).
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks an unparseable or structurally invalid request.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a missing entity.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness or state conflict (duplicate
	// certificate hash, duplicate organization, already-revoked degree).
	CodeConflict Code = "conflict"
	// CodeUnauthorized marks an action attempted by a caller that is not the
	// attestation authority.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an action the caller's current status does not
	// permit (e.g. suspended issuer submitting a degree).
	CodeForbidden Code = "forbidden"
	// CodeInvariantViolation marks an aggregate invariant breach. These are
	// internal contract errors; services translate them before they reach
	// the API surface.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks a backing-store or infrastructure failure. Never
	// used for business-rule rejections.
	CodeInternal Code = "internal"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match two coded errors by code and message, so tests can
// compare against a freshly constructed expectation.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. Use this at the
// service boundary to translate store failures into CodeInternal without
// losing the chain.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability in tests.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors so infrastructure failures never masquerade as
// business rejections.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
