// Package dfserr implements the client's error taxonomy: four kinds,
// distinguishable by type rather than by message text.
package dfserr

import (
	"errors"
	"fmt"
)

// Kind identifies which of the four error categories an Error belongs to.
type Kind int

const (
	// Infrastructure covers any coordinator/storage-node reachability,
	// framing, or protocol-status failure. Unchecked; callers may retry
	// across replicas or endpoints.
	Infrastructure Kind = iota + 1

	// NotFound indicates the target path does not exist. Returned from
	// stat; raised from readAttributes and from listing a non-existent
	// directory. Never retried across coordinator endpoints.
	NotFound

	// CallerStream indicates an error originating in a caller-supplied
	// source or sink, not in the DFS itself. Propagated verbatim.
	CallerStream

	// InvalidArgument indicates a malformed path, a required nil input,
	// or a negative size. Raised synchronously at the API boundary
	// before any network work.
	InvalidArgument
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Infrastructure:
		return "Infrastructure"
	case NotFound:
		return "NotFound"
	case CallerStream:
		return "CallerStream"
	case InvalidArgument:
		return "InvalidArgument"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Error is the single typed error this client ever returns. Callers
// distinguish behavior by Kind, never by parsing Error's message.
type Error struct {
	Kind    Kind
	Message string
	Path    string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s (path: %s): %v", e.Kind, e.Message, e.Path, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path: %s)", e.Kind, e.Message, e.Path)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with no path and no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps cause as the given kind, preserving it for errors.Is/As.
// If cause is already a *Error of the same kind, it is returned unchanged
// rather than double-wrapped.
func Wrap(kind Kind, cause error, message string) *Error {
	if existing, ok := AsError(cause); ok && existing.Kind == kind {
		return existing
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithPath returns a copy of e with Path set.
func (e *Error) WithPath(path string) *Error {
	cp := *e
	cp.Path = path
	return &cp
}

// NotFoundError creates a NotFound error for path.
func NotFoundError(path string) *Error {
	return &Error{Kind: NotFound, Message: "path not found", Path: path}
}

// InvalidArgumentError creates an InvalidArgument error.
func InvalidArgumentError(message string) *Error {
	return &Error{Kind: InvalidArgument, Message: message}
}

// InfrastructureError wraps cause as an Infrastructure error.
func InfrastructureError(cause error, message string) *Error {
	return Wrap(Infrastructure, cause, message)
}

// CallerStreamError wraps cause as a CallerStream error, tagging it at the
// point it originates. A later Wrap with a different kind wraps it afresh
// under that kind, after which Is(err, CallerStream) reports false.
func CallerStreamError(cause error, message string) *Error {
	return Wrap(CallerStream, cause, message)
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// AsError extracts a *Error from err, following the wrap chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
