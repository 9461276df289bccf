package engine

import (
	"errors"
	"fmt"
)

// Error represents a reconciliation failure with enough structure for
// the per-record boundary to decide between skip, revert-and-comment and
// pass abort.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// System names the collaborator involved: "document", "tracker"
	// or "directory". Empty for core errors.
	System string

	// Record identifies the affected record (document id or work item
	// id), when known.
	Record string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes reconciliation errors.
type ErrorCode string

const (
	// ErrCodeNotFound means a lookup yielded nothing. Usually
	// recoverable by skipping and retrying next pass.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeAmbiguousMatch means more than one candidate matched.
	// Always surfaced to a human via a comment, never auto-resolved.
	ErrCodeAmbiguousMatch ErrorCode = "AMBIGUOUS_MATCH"

	// ErrCodeConflict means a write was rejected for a stale
	// concurrency token. Re-fetch and retry within the pass, bounded.
	ErrCodeConflict ErrorCode = "CONFLICT"

	// ErrCodeRemoteUnavailable means a transport or HTTP failure.
	// Aborts the current record, never the whole pass.
	ErrCodeRemoteUnavailable ErrorCode = "REMOTE_UNAVAILABLE"

	// ErrCodeValidation means a malformed record: bad identifier,
	// non-numeric id, missing required field. Skip, log, continue.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeFetch means the initial page fetch of a pass failed.
	// Fatal for the pass.
	ErrCodeFetch ErrorCode = "FETCH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.System != "" && e.Record != "":
		return fmt.Sprintf("%s: %s (system=%s, record=%s)", e.Code, e.Message, e.System, e.Record)
	case e.System != "":
		return fmt.Sprintf("%s: %s (system=%s)", e.Code, e.Message, e.System)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error for the given code and collaborator system.
func NewError(code ErrorCode, system, format string, args ...any) *Error {
	return &Error{Code: code, System: system, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error wrapping an underlying cause.
func WrapError(code ErrorCode, system string, err error, format string, args ...any) *Error {
	return &Error{Code: code, System: system, Message: fmt.Sprintf(format, args...), Err: err}
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsAmbiguous reports whether err is an AMBIGUOUS_MATCH error.
func IsAmbiguous(err error) bool { return hasCode(err, ErrCodeAmbiguousMatch) }

// IsConflict reports whether err is a CONFLICT error.
func IsConflict(err error) bool { return hasCode(err, ErrCodeConflict) }

// IsRemoteUnavailable reports whether err is a REMOTE_UNAVAILABLE error.
func IsRemoteUnavailable(err error) bool { return hasCode(err, ErrCodeRemoteUnavailable) }

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsFetch reports whether err is a pass-fatal FETCH error.
func IsFetch(err error) bool { return hasCode(err, ErrCodeFetch) }
