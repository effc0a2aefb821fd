// Package apperr defines the engine's error taxonomy. Every operation returns
// one of these kinds so callers can map failures to retry/surface decisions
// (and the HTTP layer to status codes) without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind int

const (
	// KindValidation marks a bad or missing amount/selection.
	KindValidation Kind = iota
	// KindNotFound marks an unknown plan, person or record.
	KindNotFound
	// KindPermission marks a non-owner attempting an owner-only mutation.
	KindPermission
	// KindStore marks a transient backend failure.
	KindStore
	// KindConflict marks a precondition invalidated mid-operation, e.g. the
	// plan was deleted concurrently.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindStore:
		return "store"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a classified engine error. It wraps an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation creates a KindValidation error.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Permission creates a KindPermission error.
func Permission(format string, args ...any) error {
	return &Error{Kind: KindPermission, Msg: fmt.Sprintf(format, args...)}
}

// Store wraps a backend failure.
func Store(msg string, err error) error {
	return &Error{Kind: KindStore, Msg: msg, Err: err}
}

// Conflict creates a KindConflict error.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindStore for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}
