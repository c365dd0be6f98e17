package fletch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHttpErrorMessageOnly checks Error() with no wrapped cause.
func TestHttpErrorMessageOnly(t *testing.T) {
	e := NewHttpError(StatusNotFound, "not found")
	assert.Equal(t, "not found", e.Error())
	assert.Nil(t, e.Unwrap())
}

// TestHttpErrorWithWrappedCause checks Error() includes the wrapped
// error's text, and Unwrap exposes it for errors.Is/As.
func TestHttpErrorWithWrappedCause(t *testing.T) {
	cause := errors.New("db down")
	e := NewHttpErrorWithError(StatusInternalServerError, "lookup failed", cause)

	assert.Equal(t, "lookup failed: db down", e.Error())
	assert.ErrorIs(t, e, cause)
}

// TestDefaultErrorHandlerUsesHttpErrorStatus checks a panic with an
// *HttpError preserves its chosen status rather than defaulting to 500.
func TestDefaultErrorHandlerUsesHttpErrorStatus(t *testing.T) {
	resp := defaultErrorHandler(NewHttpError(StatusTeapot, "no coffee"))
	assert.Equal(t, StatusTeapot, resp.Status)
	assert.Equal(t, "no coffee", string(resp.Body))
}

// TestDefaultErrorHandlerWrapsPlainError checks a panic with a plain error
// (not an *HttpError, and not unwrapping to one) becomes a 500.
func TestDefaultErrorHandlerWrapsPlainError(t *testing.T) {
	resp := defaultErrorHandler(errors.New("boom"))
	assert.Equal(t, StatusInternalServerError, resp.Status)
}

// TestDefaultErrorHandlerUnwrapsToHttpError checks a wrapped *HttpError
// reachable via errors.As still gets its own status.
func TestDefaultErrorHandlerUnwrapsToHttpError(t *testing.T) {
	wrapped := NewHttpErrorWithError(StatusConflict, "conflict", errors.New("cause"))
	resp := defaultErrorHandler(fmt.Errorf("while handling: %w", wrapped))
	assert.Equal(t, StatusConflict, resp.Status)
}

// TestDefaultErrorHandlerUnknownValueIs500 checks a panic with a
// non-error value still yields a safe 500 rather than propagating.
func TestDefaultErrorHandlerUnknownValueIs500(t *testing.T) {
	resp := defaultErrorHandler("a raw string panic")
	assert.Equal(t, StatusInternalServerError, resp.Status)
}
