// Package errs defines the error-kind taxonomy shared across every
// component. Components wrap underlying errors with a Kind via
// Wrap, and callers classify them with Is/KindOf instead of string
// matching.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the error kinds named in the error handling design.
type Kind string

const (
	// InvalidInput means a single record was rejected; the caller's batch
	// continues.
	InvalidInput Kind = "INVALID_INPUT"
	// UnknownUnit is a soft failure: size could not be normalized, the
	// record is kept with an unset size.
	UnknownUnit Kind = "UNKNOWN_UNIT"
	// ParseFailure means a whole file could not be opened or decoded.
	ParseFailure Kind = "PARSE_FAILURE"
	// NotFound is returned as an empty/nil value by callers above the
	// store; it never escapes as an error past the Catalog Manager.
	NotFound Kind = "NOT_FOUND"
	// MergeConflict means a merge source is no longer active (already
	// merged), or its prices collide with the target's.
	MergeConflict Kind = "MERGE_CONFLICT"
	// DeadlineExceeded means a store operation's context deadline passed;
	// the underlying transaction has been rolled back.
	DeadlineExceeded Kind = "DEADLINE_EXCEEDED"
	// Internal is an unexpected error that should be logged with context
	// and fails the enclosing task.
	Internal Kind = "INTERNAL"
)

// kindedError pairs a Kind with an underlying cause.
type kindedError struct {
	kind  Kind
	cause error
}

func (e *kindedError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.cause)
}

func (e *kindedError) Unwrap() error {
	return e.cause
}

// Wrap annotates err with kind, preserving the original error for
// errors.Is/As and logging via errors.Cause.
func Wrap(kind Kind, err error, context string) error {
	if err == nil {
		return nil
	}
	wrapped := errors.WithMessage(err, context)
	return &kindedError{kind: kind, cause: wrapped}
}

// New creates a fresh error of the given kind with no underlying cause.
func New(kind Kind, message string) error {
	return &kindedError{kind: kind, cause: errors.New(message)}
}

// KindOf extracts the Kind from err, if any component in its chain is a
// kindedError. Returns ("", false) for plain errors.
func KindOf(err error) (Kind, bool) {
	var ke *kindedError
	for err != nil {
		if k, ok := err.(*kindedError); ok {
			ke = k
			break
		}
		err = errors.Unwrap(err)
	}
	if ke == nil {
		return "", false
	}
	return ke.kind, true
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
