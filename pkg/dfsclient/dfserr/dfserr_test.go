package dfserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	t.Run("error with path includes path in message", func(t *testing.T) {
		t.Parallel()
		err := &Error{Kind: NotFound, Message: "path not found", Path: "/a/b"}

		assert.Contains(t, err.Error(), "NotFound")
		assert.Contains(t, err.Error(), "path not found")
		assert.Contains(t, err.Error(), "/a/b")
	})

	t.Run("error without path omits path", func(t *testing.T) {
		t.Parallel()
		err := &Error{Kind: InvalidArgument, Message: "negative size"}

		assert.Equal(t, "InvalidArgument: negative size", err.Error())
	})

	t.Run("error with cause includes cause text", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("connection refused")
		err := &Error{Kind: Infrastructure, Message: "dial failed", Cause: cause}

		assert.Contains(t, err.Error(), "dial failed")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Infrastructure", Infrastructure.String())
	assert.Equal(t, "NotFound", NotFound.String())
	assert.Equal(t, "CallerStream", CallerStream.String())
	assert.Equal(t, "InvalidArgument", InvalidArgument.String())
	assert.Contains(t, Kind(99).String(), "Unknown")
}

func TestWrap_PreservesUnderlyingCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("EOF")
	err := Wrap(CallerStream, cause, "sink write failed")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CallerStream, err.Kind)
}

func TestWrap_DoesNotDoubleWrapSameKind(t *testing.T) {
	t.Parallel()

	inner := New(Infrastructure, "dial failed")
	outer := Wrap(Infrastructure, inner, "retry exhausted")

	assert.Same(t, inner, outer)
}

func TestWrap_DifferentKindWrapsFreshly(t *testing.T) {
	t.Parallel()

	inner := New(CallerStream, "sink closed")
	outer := Wrap(Infrastructure, inner, "unexpected")

	require.NotSame(t, inner, outer)
	assert.Equal(t, Infrastructure, outer.Kind)
	assert.Same(t, inner, outer.Cause)
}

func TestIs(t *testing.T) {
	t.Parallel()

	err := NotFoundError("/missing")

	assert.True(t, Is(err, NotFound))
	assert.False(t, Is(err, Infrastructure))
	assert.False(t, Is(errors.New("plain"), NotFound))
}

func TestAsError(t *testing.T) {
	t.Parallel()

	wrapped := fmtWrap(NotFoundError("/x"))

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, NotFound, e.Kind)
}

// fmtWrap simulates an intermediate caller wrapping the error with %w.
func fmtWrap(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func TestNotFoundError(t *testing.T) {
	t.Parallel()

	err := NotFoundError("/a/b")

	assert.Equal(t, NotFound, err.Kind)
	assert.Equal(t, "/a/b", err.Path)
}

func TestInvalidArgumentError(t *testing.T) {
	t.Parallel()

	err := InvalidArgumentError("path must be absolute")

	assert.Equal(t, InvalidArgument, err.Kind)
}

func TestCallerStreamError_NotReclassifiedAsInfrastructure(t *testing.T) {
	t.Parallel()

	streamErr := CallerStreamError(errors.New("broken pipe"), "sink write failed")

	// The error is tagged CallerStream at its origin, not Infrastructure.
	assert.Equal(t, CallerStream, streamErr.Kind)
	assert.NotEqual(t, Infrastructure, streamErr.Kind)
}
