package fletch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHandlerFuncAdapts checks HandlerFunc satisfies Handler by delegating
// to the wrapped function.
func TestHandlerFuncAdapts(t *testing.T) {
	called := false
	var h Handler = HandlerFunc(func(r *Request) *Response {
		called = true
		return NewResponse()
	})

	resp := h.Handle(&Request{})
	assert.True(t, called)
	assert.NotNil(t, resp)
}

// TestMiddlewareNilContinues checks a middleware returning nil signals
// "continue" rather than being treated as a zero-value Response.
func TestMiddlewareNilContinues(t *testing.T) {
	var mw Middleware = func(r *Request) *Response { return nil }
	assert.Nil(t, mw(&Request{}))
}
